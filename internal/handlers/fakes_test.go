package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

type memUsers struct {
	mu    sync.Mutex
	users map[int64]*models.User
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: map[int64]*models.User{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, utils.NotFound("user not found")
}

func (m *memUsers) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, utils.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) UpdateUserPassword(_ context.Context, username, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			u.Password = hash
			return nil
		}
	}
	return utils.NotFound("user not found")
}

func (m *memUsers) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var max int64
	for id, existing := range m.users {
		if existing.Username == u.Username {
			return utils.Conflict("user already exists")
		}
		if id > max {
			max = id
		}
	}
	u.ID = max + 1
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) ListUsers(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memQuotas struct {
	mu     sync.Mutex
	quotas []models.Quota
}

func (m *memQuotas) ListQuotas(_ context.Context, accountID string) ([]models.Quota, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Quota{}
	for _, q := range m.quotas {
		if accountID == "" || q.AccountID == accountID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memQuotas) GetQuota(_ context.Context, id int64) (*models.Quota, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.quotas {
		if q.ID == id {
			cp := q
			return &cp, nil
		}
	}
	return nil, utils.NotFound("quota not found")
}

func (m *memQuotas) CreateQuota(_ context.Context, q *models.Quota) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.quotas {
		if existing.AccountID == q.AccountID && existing.ResourceType == q.ResourceType {
			return utils.Conflict("quota already exists")
		}
	}
	q.ID = int64(len(m.quotas) + 1)
	m.quotas = append(m.quotas, *q)
	return nil
}

func (m *memQuotas) UpdateQuotaLimit(_ context.Context, id, limit int64) (*models.Quota, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.quotas {
		if m.quotas[i].ID == id {
			m.quotas[i].Limit = limit
			cp := m.quotas[i]
			return &cp, nil
		}
	}
	return nil, utils.NotFound("quota not found")
}

type memNodes struct {
	mu    sync.Mutex
	nodes []models.HierarchyNode
}

func (m *memNodes) ListNodes(context.Context) ([]*models.HierarchyNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.HierarchyNode, 0, len(m.nodes))
	for _, n := range m.nodes {
		cp := n
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memNodes) GetNode(_ context.Context, id int64) (*models.HierarchyNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.nodes {
		if n.ID == id {
			cp := n
			return &cp, nil
		}
	}
	return nil, utils.NotFound("hierarchy node not found")
}

func (m *memNodes) CreateNode(_ context.Context, n *models.HierarchyNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = int64(len(m.nodes) + 1)
	m.nodes = append(m.nodes, *n)
	return nil
}
