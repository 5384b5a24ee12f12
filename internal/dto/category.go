package dto

import "time"

type CategoryRequest struct {
	Name  string  `json:"name"`
	Type  int     `json:"type"`
	Color *string `json:"color"`
}

type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      int       `json:"type"`
	Color     *string   `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}
