// Package docs holds the OpenAPI document served at /swagger. Keep it in sync
// with the handler annotations; `swag init -g cmd/expense-tracker/main.go`
// rebuilds it from them.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/Authentication/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login user",
                "parameters": [
                    {"description": "Login request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TokenResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/Authentication/me": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.MeResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/Authentication/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a new user",
                "parameters": [
                    {"description": "Registration request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/ai/transactions/from-receipt": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["ai"],
                "summary": "Create transaction from a receipt",
                "parameters": [
                    {"type": "file", "description": "Receipt (PDF, JPEG, PNG)", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Extra note for the model", "name": "note", "in": "formData"},
                    {"type": "string", "description": "Workspace ID", "name": "X-Workspace-Id", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AITransactionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/ai/transactions/from-text": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ai"],
                "summary": "Create transaction from free text",
                "parameters": [
                    {"description": "Text", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AITextRequest"}},
                    {"type": "string", "description": "Workspace ID", "name": "X-Workspace-Id", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AITransactionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "502": {"description": "Bad Gateway", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/categories": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "List categories",
                "parameters": [
                    {"type": "string", "description": "Workspace ID", "name": "X-Workspace-Id", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.CategoryResponse"}}}
                }
            },
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Create category",
                "parameters": [
                    {"description": "Category", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CategoryRequest"}},
                    {"type": "string", "description": "Workspace ID", "name": "X-Workspace-Id", "in": "header"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.CategoryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/categories/{id}": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Get category",
                "parameters": [
                    {"type": "string", "description": "Category ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CategoryResponse"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "put": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["categories"],
                "summary": "Update category",
                "parameters": [
                    {"type": "string", "description": "Category ID", "name": "id", "in": "path", "required": true},
                    {"description": "Category", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CategoryRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CategoryResponse"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "security": [{"Bearer": []}],
                "tags": ["categories"],
                "summary": "Delete category",
                "parameters": [
                    {"type": "string", "description": "Category ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/reports/by-category": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Totals by category",
                "parameters": [
                    {"type": "integer", "description": "Year", "name": "year", "in": "query", "required": true},
                    {"type": "integer", "description": "Month (1-12)", "name": "month", "in": "query", "required": true},
                    {"type": "integer", "description": "0 expense (default), 1 income", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.CategoryTotalResponse"}}}
                }
            }
        },
        "/api/reports/by-category/chart": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["image/png"],
                "tags": ["reports"],
                "summary": "Totals by category as a pie chart",
                "parameters": [
                    {"type": "integer", "description": "Year", "name": "year", "in": "query", "required": true},
                    {"type": "integer", "description": "Month (1-12)", "name": "month", "in": "query", "required": true},
                    {"type": "integer", "description": "0 expense (default), 1 income", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "204": {"description": "No data for the month"}
                }
            }
        },
        "/api/reports/recent": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Recent transactions",
                "parameters": [
                    {"type": "integer", "description": "Max items (default 10, up to 50)", "name": "take", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.TransactionResponse"}}}
                }
            }
        },
        "/api/reports/summary": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Monthly summary",
                "parameters": [
                    {"type": "integer", "description": "Year", "name": "year", "in": "query", "required": true},
                    {"type": "integer", "description": "Month (1-12)", "name": "month", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SummaryResponse"}}
                }
            }
        },
        "/api/transactions": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "List transactions",
                "parameters": [
                    {"type": "integer", "description": "Max items (default 50, up to 200)", "name": "take", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.TransactionResponse"}}}
                }
            },
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Create transaction",
                "parameters": [
                    {"description": "Transaction", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.TransactionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.TransactionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/transactions/search": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Search transactions",
                "parameters": [
                    {"type": "string", "description": "Category name contains (case-insensitive)", "name": "categoryName", "in": "query"},
                    {"type": "string", "description": "Created on or after (YYYY-MM-DD)", "name": "createdFrom", "in": "query"},
                    {"type": "string", "description": "Created on or before (YYYY-MM-DD)", "name": "createdTo", "in": "query"},
                    {"type": "integer", "description": "Max items (default 200, up to 500)", "name": "take", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.TransactionResponse"}}}
                }
            }
        },
        "/api/transactions/{id}": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Get transaction",
                "parameters": [
                    {"type": "string", "description": "Transaction ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TransactionResponse"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "put": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Update transaction",
                "parameters": [
                    {"type": "string", "description": "Transaction ID", "name": "id", "in": "path", "required": true},
                    {"description": "Transaction", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.TransactionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.TransactionResponse"}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            },
            "delete": {
                "security": [{"Bearer": []}],
                "tags": ["transactions"],
                "summary": "Delete transaction",
                "parameters": [
                    {"type": "string", "description": "Transaction ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/workspaces": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["workspaces"],
                "summary": "Create workspace",
                "parameters": [
                    {"description": "Workspace", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateWorkspaceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.WorkspaceResponse"}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/workspaces/accept": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["workspaces"],
                "summary": "Accept invite",
                "parameters": [
                    {"description": "Invite token", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.InviteTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.WorkspaceResponse"}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/workspaces/invites": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["workspaces"],
                "summary": "Pending invites",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.PendingInviteResponse"}}}
                }
            }
        },
        "/api/workspaces/me": {
            "get": {
                "security": [{"Bearer": []}],
                "produces": ["application/json"],
                "tags": ["workspaces"],
                "summary": "My workspaces",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.WorkspaceResponse"}}}
                }
            }
        },
        "/api/workspaces/reject": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "tags": ["workspaces"],
                "summary": "Reject invite",
                "parameters": [
                    {"description": "Invite token", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.InviteTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/workspaces/{id}/invite": {
            "post": {
                "security": [{"Bearer": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["workspaces"],
                "summary": "Invite by email",
                "parameters": [
                    {"type": "string", "description": "Workspace ID", "name": "id", "in": "path", "required": true},
                    {"description": "Invitee", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.InviteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.InviteCreatedResponse"}},
                    "403": {"description": "Forbidden", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "dto.AITextRequest": {"type": "object", "properties": {"text": {"type": "string"}}},
        "dto.AITransactionResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "amount": {"type": "number"}, "date": {"type": "string"}, "type": {"type": "integer"},
            "category": {"type": "string"}, "note": {"type": "string"}, "confidence": {"type": "number"}}},
        "dto.CategoryRequest": {"type": "object", "properties": {
            "name": {"type": "string"}, "type": {"type": "integer"}, "color": {"type": "string"}}},
        "dto.CategoryResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "type": {"type": "integer"}, "color": {"type": "string"}, "createdAt": {"type": "string"}}},
        "dto.CategoryTotalResponse": {"type": "object", "properties": {
            "categoryId": {"type": "string"}, "categoryName": {"type": "string"}, "categoryColor": {"type": "string"}, "total": {"type": "number"}}},
        "dto.CreateWorkspaceRequest": {"type": "object", "properties": {"name": {"type": "string"}}},
        "dto.InviteCreatedResponse": {"type": "object", "properties": {"token": {"type": "string"}, "expiresAt": {"type": "string"}}},
        "dto.InviteRequest": {"type": "object", "properties": {"email": {"type": "string"}}},
        "dto.InviteTokenRequest": {"type": "object", "properties": {"token": {"type": "string"}}},
        "dto.LoginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "dto.MeResponse": {"type": "object", "properties": {"userId": {"type": "string"}, "email": {"type": "string"}}},
        "dto.PendingInviteResponse": {"type": "object", "properties": {
            "token": {"type": "string"}, "workspaceId": {"type": "string"}, "workspaceName": {"type": "string"}, "expiresAt": {"type": "string"}}},
        "dto.RegisterRequest": {"type": "object", "properties": {
            "email": {"type": "string"}, "fullName": {"type": "string"}, "password": {"type": "string"}}},
        "dto.SummaryResponse": {"type": "object", "properties": {
            "income": {"type": "number"}, "expense": {"type": "number"}, "balance": {"type": "number"}}},
        "dto.TokenResponse": {"type": "object", "properties": {"token": {"type": "string"}}},
        "dto.TransactionRequest": {"type": "object", "properties": {
            "amount": {"type": "number"}, "date": {"type": "string"}, "type": {"type": "integer"}, "note": {"type": "string"}, "categoryId": {"type": "string"}}},
        "dto.TransactionResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "userId": {"type": "string"}, "amount": {"type": "number"}, "date": {"type": "string"},
            "type": {"type": "integer"}, "note": {"type": "string"}, "categoryId": {"type": "string"}, "categoryName": {"type": "string"},
            "categoryColor": {"type": "string"}, "createdAt": {"type": "string"}}},
        "dto.WorkspaceResponse": {"type": "object", "properties": {
            "workspaceId": {"type": "string"}, "name": {"type": "string"}, "isOwner": {"type": "boolean"}}}
    },
    "securityDefinitions": {
        "Bearer": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Expense Tracker API",
	Description:      "Personal and family expense tracking with shared workspaces and AI-assisted entry.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
