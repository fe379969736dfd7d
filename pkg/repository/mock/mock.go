package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/garnizeh/joboffers/pkg/models"
	"github.com/garnizeh/joboffers/pkg/repository"
)

// Test helpers and mocks. The in-memory repos follow the same contracts as
// the SQLite implementation: Get* returns (nil, nil) on miss, offers must
// reference an existing user and usernames are unique.
type Mocks struct {
	UserRepo  *mockUserRepo
	OfferRepo *mockOfferRepo
}

func NewMocks() *Mocks {
	users := &mockUserRepo{byID: map[int64]*models.User{}}
	return &Mocks{
		UserRepo:  users,
		OfferRepo: &mockOfferRepo{users: users, byID: map[int64]*models.Offer{}},
	}
}

type mockUserRepo struct {
	mu     sync.Mutex
	byID   map[int64]*models.User
	nextID int64

	CreateErr error
	GetErr    error
}

var _ repository.UserRepo = (*mockUserRepo)(nil)

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	for _, existing := range m.byID {
		if existing.Username == u.Username {
			return 0, repository.ErrDuplicate
		}
	}

	m.nextID++
	cp := *u
	cp.ID = m.nextID
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, u := range m.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.byID, id)
	return nil
}

func (m *mockUserRepo) exists(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.byID[id]
	return ok
}

type mockOfferRepo struct {
	mu     sync.Mutex
	users  *mockUserRepo
	byID   map[int64]*models.Offer
	nextID int64

	CreateErr error
	ListErr   error
	UpdateErr error
	DeleteErr error
}

var _ repository.OfferRepo = (*mockOfferRepo)(nil)

func (m *mockOfferRepo) CreateOffer(ctx context.Context, o *models.Offer) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	if !m.users.exists(o.UserID) {
		return 0, repository.ErrInvalidOwner
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	cp := cloneOffer(o)
	cp.ID = m.nextID
	if cp.SkillsList == nil {
		cp.SkillsList = []string{}
	}
	m.byID[cp.ID] = cp
	return cp.ID, nil
}

func (m *mockOfferRepo) GetOffer(ctx context.Context, userID, id int64) (*models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if o, ok := m.byID[id]; ok && o.UserID == userID {
		return cloneOffer(o), nil
	}
	return nil, nil
}

func (m *mockOfferRepo) ListOffersByUser(ctx context.Context, userID int64) ([]models.Offer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var out []models.Offer
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *cloneOffer(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockOfferRepo) UpdateOffer(ctx context.Context, userID, id int64, patch models.OfferPatch, modified time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	existing, ok := m.byID[id]
	if !ok || existing.UserID != userID {
		return repository.ErrNotFound
	}

	patch.Apply(existing)
	if !modified.After(existing.ModificationDate) {
		modified = existing.ModificationDate.Add(time.Microsecond)
	}
	existing.ModificationDate = modified
	return nil
}

func (m *mockOfferRepo) DeleteOffer(ctx context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	existing, ok := m.byID[id]
	if !ok || existing.UserID != userID {
		return repository.ErrNotFound
	}

	delete(m.byID, id)
	return nil
}

// Count returns the number of stored offers across all users.
func (m *mockOfferRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.byID)
}

func cloneOffer(o *models.Offer) *models.Offer {
	cp := *o
	if o.SkillsList != nil {
		cp.SkillsList = append([]string{}, o.SkillsList...)
	}
	return &cp
}
