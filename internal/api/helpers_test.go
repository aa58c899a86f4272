package api

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/roster-api/internal/api/shared"
	"github.com/phrazzld/roster-api/internal/domain"
	"github.com/phrazzld/roster-api/internal/service/auth"
	"github.com/phrazzld/roster-api/internal/store"
)

// fakeUserStore is an in-memory store.UserStore for handler tests. It
// mirrors the real store's contract: validation, hashing of plaintext
// passwords, email uniqueness, and stable (created_at, id) list ordering.
type fakeUserStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*domain.User
	hasher auth.PasswordHasher

	// listErr, when set, is returned from List to exercise error paths.
	listErr error
}

var _ store.UserStore = (*fakeUserStore)(nil)

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:  make(map[uuid.UUID]*domain.User),
		hasher: auth.NewBcryptHasher(bcrypt.MinCost),
	}
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := user.Validate(); err != nil {
		return err
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	if user.Password != "" {
		hashed, err := f.hasher.Hash(user.Password)
		if err != nil {
			return err
		}
		user.HashedPassword = hashed
		user.Password = ""
	}

	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	email = strings.ToLower(strings.TrimSpace(email))
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) List(
	ctx context.Context,
	params store.ListUsersParams,
) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	all := make([]*domain.User, 0, len(f.users))
	for _, user := range f.users {
		copied := *user
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	if params.After != nil {
		idx := 0
		for i, user := range all {
			if user.CreatedAt.After(params.After.CreatedAt) ||
				(user.CreatedAt.Equal(params.After.CreatedAt) &&
					user.ID.String() > params.After.ID.String()) {
				idx = i
				break
			}
			idx = i + 1
		}
		all = all[idx:]
	} else {
		if params.Offset >= len(all) {
			return []*domain.User{}, nil
		}
		all = all[params.Offset:]
	}

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := user.Validate(); err != nil {
		return err
	}
	if _, ok := f.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	for id, existing := range f.users {
		if id != user.ID && existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	if user.Password != "" {
		hashed, err := f.hasher.Hash(user.Password)
		if err != nil {
			return err
		}
		user.HashedPassword = hashed
		user.Password = ""
	}

	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return f
}

// withUserID simulates the auth middleware by planting a user ID in the
// request context.
func withUserID(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
	return r.WithContext(ctx)
}
