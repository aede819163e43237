package handlers_test

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"webar-backend/internal/auth"
	"webar-backend/internal/database"
	"webar-backend/internal/middleware"
	"webar-backend/internal/models"
)

// fakeStore is an in-memory stand-in for the database client. The mutex
// mirrors the per-owner serialization the real quota transaction provides.
type fakeStore struct {
	mu       sync.Mutex
	users    []*models.User
	projects []*models.Project
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

func (s *fakeStore) addUser(u *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.IsActive = true
	s.users = append(s.users, u)
	return u
}

func (s *fakeStore) userByID(id uuid.UUID) *models.User {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *fakeStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) ListUsers(_ context.Context, excludeID uuid.UUID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for i := len(s.users) - 1; i >= 0; i-- {
		if s.users[i].ID != excludeID {
			out = append(out, *s.users[i])
		}
	}
	return out, nil
}

func (s *fakeStore) CreateUser(_ context.Context, name, email, passwordHash string, projectLimit int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return nil, database.ErrDuplicateEmail
		}
	}
	u := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleStandard,
		ProjectLimit: projectLimit,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	s.users = append(s.users, u)
	copied := *u
	return &copied, nil
}

func (s *fakeStore) UpdateUserLimit(_ context.Context, userID uuid.UUID, projectLimit int) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.userByID(userID)
	if u == nil {
		return nil, database.ErrNotFound
	}
	u.ProjectLimit = projectLimit
	copied := *u
	return &copied, nil
}

func (s *fakeStore) DeleteUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.users {
		if u.ID == userID {
			s.users = append(s.users[:i], s.users[i+1:]...)
			var kept []*models.Project
			for _, p := range s.projects {
				if p.UserID != userID {
					kept = append(kept, p)
				}
			}
			s.projects = kept
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeStore) ListProjects(_ context.Context, userID uuid.UUID) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Project
	for i := len(s.projects) - 1; i >= 0; i-- {
		if s.projects[i].UserID == userID {
			out = append(out, *s.projects[i])
		}
	}
	return out, nil
}

func (s *fakeStore) CreateProject(_ context.Context, p *models.Project) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner := s.userByID(p.UserID)
	if owner == nil {
		return nil, database.ErrNotFound
	}
	count := 0
	for _, existing := range s.projects {
		if existing.UserID == p.UserID {
			count++
		}
	}
	if count >= owner.ProjectLimit {
		return nil, database.ErrQuotaExceeded
	}
	copied := *p
	copied.CreatedAt = time.Now()
	s.projects = append(s.projects, &copied)
	result := copied
	return &result, nil
}

func (s *fakeStore) RenameProject(_ context.Context, userID, projectID uuid.UUID, name string) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == projectID && p.UserID == userID {
			p.Name = name
			copied := *p
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) DeleteProject(_ context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.projects {
		if p.ID == projectID && p.UserID == userID {
			s.projects = append(s.projects[:i], s.projects[i+1:]...)
			copied := *p
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) GetPublicProject(_ context.Context, projectID uuid.UUID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.ID == projectID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) projectCount(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, p := range s.projects {
		if p.UserID == userID {
			count++
		}
	}
	return count
}

type destroyCall struct {
	publicID     string
	resourceType string
}

type fakeDestroyer struct {
	mu    sync.Mutex
	err   error
	calls []destroyCall
}

func (d *fakeDestroyer) Destroy(_ context.Context, publicID, resourceType string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, destroyCall{publicID: publicID, resourceType: resourceType})
	return d.err
}

// withIdentity injects a caller identity the way the auth middleware
// would, so handler tests can skip token plumbing.
func withIdentity(identity auth.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityKey, identity)
		c.Next()
	}
}

func identityFor(u *models.User) auth.Identity {
	return auth.Identity{
		ID:   u.ID.String(),
		Name: u.Name,
		Role: u.Role,
	}
}
