// Package memory is an in-process store with the same contracts as the
// Postgres repositories. It backs DB_DRIVER=memory and the test suites.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"expense-tracker/internal/models"
	"expense-tracker/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store keeps every table in maps keyed by id.
type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]models.User
	workspaces   map[uuid.UUID]models.Workspace
	members      map[uuid.UUID]models.WorkspaceMember
	invites      map[uuid.UUID]models.WorkspaceInvite
	categories   map[uuid.UUID]models.Category
	transactions map[uuid.UUID]models.Transaction
}

func NewStore() *Store {
	return &Store{
		users:        make(map[uuid.UUID]models.User),
		workspaces:   make(map[uuid.UUID]models.Workspace),
		members:      make(map[uuid.UUID]models.WorkspaceMember),
		invites:      make(map[uuid.UUID]models.WorkspaceInvite),
		categories:   make(map[uuid.UUID]models.Category),
		transactions: make(map[uuid.UUID]models.Transaction),
	}
}

// Users returns the store as a user repository.
func (s *Store) Users() *UserRepository { return &UserRepository{s} }

func (s *Store) Workspaces() *WorkspaceRepository { return &WorkspaceRepository{s} }

func (s *Store) Invites() *InviteRepository { return &InviteRepository{s} }

func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s} }

func (s *Store) Transactions() *TransactionRepository { return &TransactionRepository{s} }

func (s *Store) Reports() *ReportRepository { return &ReportRepository{s} }

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type WorkspaceRepository struct{ s *Store }

func (r *WorkspaceRepository) FindByOwnerAndName(_ context.Context, ownerID uuid.UUID, name string) (*models.Workspace, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var found *models.Workspace
	for _, w := range r.s.workspaces {
		if w.OwnerID == ownerID && w.Name == name {
			if found == nil || w.CreatedAt.Before(found.CreatedAt) {
				w := w
				found = &w
			}
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *WorkspaceRepository) CreateWithOwner(_ context.Context, ws *models.Workspace, owner *models.WorkspaceMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if ws.Name == models.PersonalWorkspaceName {
		for _, w := range r.s.workspaces {
			if w.OwnerID == ws.OwnerID && w.Name == models.PersonalWorkspaceName {
				return repository.ErrDuplicate
			}
		}
	}
	r.s.workspaces[ws.ID] = *ws
	r.s.addMemberLocked(owner)
	return nil
}

func (r *WorkspaceRepository) IsMember(_ context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.findMemberLocked(workspaceID, userID)
	return ok, nil
}

func (r *WorkspaceRepository) IsOwner(_ context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	m, ok := r.s.findMemberLocked(workspaceID, userID)
	return ok && m.IsOwner, nil
}

func (r *WorkspaceRepository) ListMemberships(_ context.Context, userID uuid.UUID) ([]models.Membership, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []models.Membership
	for _, m := range r.s.members {
		if m.UserID != userID {
			continue
		}
		items = append(items, models.Membership{
			WorkspaceID: m.WorkspaceID,
			Name:        r.s.workspaces[m.WorkspaceID].Name,
			IsOwner:     m.IsOwner,
		})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].IsOwner != items[j].IsOwner {
			return items[i].IsOwner
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// MemberCount is a test helper reporting how many rows join the pair.
func (r *WorkspaceRepository) MemberCount(workspaceID, userID uuid.UUID) int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, m := range r.s.members {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			n++
		}
	}
	return n
}

func (s *Store) findMemberLocked(workspaceID, userID uuid.UUID) (models.WorkspaceMember, bool) {
	for _, m := range s.members {
		if m.WorkspaceID == workspaceID && m.UserID == userID {
			return m, true
		}
	}
	return models.WorkspaceMember{}, false
}

// addMemberLocked mirrors ON CONFLICT (workspace_id, user_id) DO NOTHING.
func (s *Store) addMemberLocked(m *models.WorkspaceMember) {
	if _, ok := s.findMemberLocked(m.WorkspaceID, m.UserID); ok {
		return
	}
	s.members[m.ID] = *m
}

type InviteRepository struct{ s *Store }

func (r *InviteRepository) Create(_ context.Context, inv *models.WorkspaceInvite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.invites {
		if existing.Token == inv.Token {
			return repository.ErrDuplicate
		}
	}
	r.s.invites[inv.ID] = *inv
	return nil
}

func (r *InviteRepository) HasActive(_ context.Context, workspaceID uuid.UUID, email string, now time.Time) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, inv := range r.s.invites {
		if inv.WorkspaceID == workspaceID && inv.InvitedEmail == email && inv.Status(now) == models.InviteStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *InviteRepository) GetByToken(_ context.Context, token string) (*models.WorkspaceInvite, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, inv := range r.s.invites {
		if inv.Token == token {
			inv.WorkspaceName = r.s.workspaces[inv.WorkspaceID].Name
			return &inv, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *InviteRepository) ListActiveByEmail(_ context.Context, email string, now time.Time) ([]*models.WorkspaceInvite, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []*models.WorkspaceInvite
	for _, inv := range r.s.invites {
		if inv.InvitedEmail == email && inv.Status(now) == models.InviteStatusPending {
			inv := inv
			inv.WorkspaceName = r.s.workspaces[inv.WorkspaceID].Name
			items = append(items, &inv)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ExpiresAt.After(items[j].ExpiresAt) })
	return items, nil
}

func (r *InviteRepository) Accept(_ context.Context, inviteID uuid.UUID, member *models.WorkspaceMember, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.invites[inviteID]
	if !ok || inv.AcceptedAt != nil || inv.RejectedAt != nil {
		return repository.ErrStale
	}
	inv.AcceptedAt = &at
	r.s.invites[inviteID] = inv
	r.s.addMemberLocked(member)
	return nil
}

func (r *InviteRepository) Reject(_ context.Context, inviteID uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.invites[inviteID]
	if !ok || inv.AcceptedAt != nil || inv.RejectedAt != nil {
		return repository.ErrStale
	}
	inv.RejectedAt = &at
	r.s.invites[inviteID] = inv
	return nil
}

// Expire moves an invite's expiry, for tests of the expired state.
func (r *InviteRepository) Expire(token string, at time.Time) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, inv := range r.s.invites {
		if inv.Token == token {
			inv.ExpiresAt = at
			r.s.invites[id] = inv
		}
	}
}

type CategoryRepository struct{ s *Store }

func (r *CategoryRepository) List(_ context.Context, workspaceID uuid.UUID) ([]*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []*models.Category
	for _, c := range r.s.categories {
		if c.WorkspaceID == workspaceID {
			c := c
			items = append(items, &c)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *CategoryRepository) GetByID(_ context.Context, workspaceID, id uuid.UUID) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok || c.WorkspaceID != workspaceID {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *CategoryRepository) GetByName(_ context.Context, workspaceID uuid.UUID, name string) (*models.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.categories {
		if c.WorkspaceID == workspaceID && c.Name == name {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *CategoryRepository) Create(_ context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.categoryNameTakenLocked(c) {
		return repository.ErrDuplicate
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepository) Update(_ context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.categories[c.ID]
	if !ok || existing.WorkspaceID != c.WorkspaceID {
		return repository.ErrNotFound
	}
	if r.s.categoryNameTakenLocked(c) {
		return repository.ErrDuplicate
	}
	existing.Name = c.Name
	existing.Type = c.Type
	existing.Color = c.Color
	r.s.categories[c.ID] = existing
	return nil
}

func (r *CategoryRepository) Delete(_ context.Context, workspaceID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok || c.WorkspaceID != workspaceID {
		return repository.ErrNotFound
	}
	for _, t := range r.s.transactions {
		if t.CategoryID != nil && *t.CategoryID == id {
			return repository.ErrReferenced
		}
	}
	delete(r.s.categories, id)
	return nil
}

func (r *CategoryRepository) HasTransactions(_ context.Context, workspaceID, id uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, t := range r.s.transactions {
		if t.WorkspaceID == workspaceID && t.CategoryID != nil && *t.CategoryID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) categoryNameTakenLocked(c *models.Category) bool {
	for _, other := range s.categories {
		if other.ID != c.ID && other.WorkspaceID == c.WorkspaceID && other.Name == c.Name {
			return true
		}
	}
	return false
}

type TransactionRepository struct{ s *Store }

func (r *TransactionRepository) Create(_ context.Context, tx *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if tx.CategoryID != nil {
		if _, ok := r.s.categories[*tx.CategoryID]; !ok {
			return repository.ErrReferenced
		}
	}
	stored := *tx
	stored.CategoryName, stored.CategoryColor = nil, nil
	r.s.transactions[tx.ID] = stored
	return nil
}

func (r *TransactionRepository) Update(_ context.Context, tx *models.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.transactions[tx.ID]
	if !ok || existing.WorkspaceID != tx.WorkspaceID {
		return repository.ErrNotFound
	}
	existing.Amount = tx.Amount
	existing.Date = tx.Date
	existing.Type = tx.Type
	existing.Note = tx.Note
	existing.CategoryID = tx.CategoryID
	r.s.transactions[tx.ID] = existing
	return nil
}

func (r *TransactionRepository) Delete(_ context.Context, workspaceID, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.transactions[id]
	if !ok || t.WorkspaceID != workspaceID {
		return repository.ErrNotFound
	}
	delete(r.s.transactions, id)
	return nil
}

func (r *TransactionRepository) GetByID(_ context.Context, workspaceID, id uuid.UUID) (*models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.transactions[id]
	if !ok || t.WorkspaceID != workspaceID {
		return nil, repository.ErrNotFound
	}
	return r.s.withCategoryLocked(t), nil
}

func (r *TransactionRepository) List(_ context.Context, workspaceID uuid.UUID, limit int) ([]*models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := r.s.filterLocked(func(t *models.Transaction) bool { return t.WorkspaceID == workspaceID })
	sort.Slice(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.After(items[j].Date)
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return truncate(items, limit), nil
}

func (r *TransactionRepository) Search(_ context.Context, workspaceID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	term := strings.ToLower(filter.CategoryName)
	items := r.s.filterLocked(func(t *models.Transaction) bool {
		if t.WorkspaceID != workspaceID {
			return false
		}
		if term != "" && (t.CategoryName == nil || !strings.Contains(strings.ToLower(*t.CategoryName), term)) {
			return false
		}
		if filter.CreatedFrom != nil && t.CreatedAt.Before(*filter.CreatedFrom) {
			return false
		}
		if filter.CreatedBefore != nil && !t.CreatedAt.Before(*filter.CreatedBefore) {
			return false
		}
		return true
	})
	sortByCreatedDesc(items)
	return truncate(items, filter.Limit), nil
}

type ReportRepository struct{ s *Store }

func (r *ReportRepository) MonthlySummary(_ context.Context, workspaceID uuid.UUID, from, to time.Time) (models.MonthlySummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	summary := models.MonthlySummary{Income: decimal.Zero, Expense: decimal.Zero}
	for _, t := range r.s.transactions {
		if t.WorkspaceID != workspaceID || t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		switch t.Type {
		case models.TransactionTypeIncome:
			summary.Income = summary.Income.Add(t.Amount)
		case models.TransactionTypeExpense:
			summary.Expense = summary.Expense.Add(t.Amount)
		}
	}
	return summary, nil
}

func (r *ReportRepository) TotalsByCategory(_ context.Context, workspaceID uuid.UUID, from, to time.Time, txType models.TransactionType) ([]models.CategoryTotal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type key struct {
		id    uuid.UUID
		valid bool
	}
	groups := make(map[key]*models.CategoryTotal)
	var order []key
	for _, t := range r.s.transactions {
		if t.WorkspaceID != workspaceID || t.Type != txType || t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		k := key{}
		if t.CategoryID != nil {
			k = key{id: *t.CategoryID, valid: true}
		}
		g, ok := groups[k]
		if !ok {
			g = &models.CategoryTotal{CategoryName: "Uncategorized", Total: decimal.Zero}
			if k.valid {
				id := k.id
				g.CategoryID = &id
				if c, ok := r.s.categories[id]; ok {
					g.CategoryName = c.Name
					g.CategoryColor = c.Color
				}
			}
			groups[k] = g
			order = append(order, k)
		}
		g.Total = g.Total.Add(t.Amount)
	}

	totals := make([]models.CategoryTotal, 0, len(order))
	for _, k := range order {
		totals = append(totals, *groups[k])
	}
	sort.SliceStable(totals, func(i, j int) bool { return totals[i].Total.GreaterThan(totals[j].Total) })
	return totals, nil
}

func (r *ReportRepository) RecentTransactions(_ context.Context, workspaceID uuid.UUID, since time.Time, limit int) ([]*models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := r.s.filterLocked(func(t *models.Transaction) bool {
		return t.WorkspaceID == workspaceID && !t.CreatedAt.Before(since)
	})
	sortByCreatedDesc(items)
	return truncate(items, limit), nil
}

func (s *Store) withCategoryLocked(t models.Transaction) *models.Transaction {
	if t.CategoryID != nil {
		if c, ok := s.categories[*t.CategoryID]; ok {
			name := c.Name
			t.CategoryName = &name
			t.CategoryColor = c.Color
		}
	}
	return &t
}

func (s *Store) filterLocked(keep func(*models.Transaction) bool) []*models.Transaction {
	items := make([]*models.Transaction, 0)
	for _, t := range s.transactions {
		joined := s.withCategoryLocked(t)
		if keep(joined) {
			items = append(items, joined)
		}
	}
	return items
}

func sortByCreatedDesc(items []*models.Transaction) {
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
}

func truncate(items []*models.Transaction, limit int) []*models.Transaction {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
