package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/roster-api/internal/domain"
)

func newTestUserHandler(t *testing.T, userStore *fakeUserStore) *UserHandler {
	t.Helper()
	h, err := NewUserHandler(userStore)
	require.NoError(t, err)
	return h
}

// newUserRouter mounts the handler on a chi router so path parameters
// resolve the same way they do in production.
func newUserRouter(h *UserHandler) chi.Router {
	r := chi.NewRouter()
	r.Post("/users", h.Create)
	r.Get("/users", h.List)
	r.Get("/users/{id}", h.Get)
	r.Put("/users/{id}", h.Update)
	r.Delete("/users/{id}", h.Delete)
	r.Get("/me", h.Me)
	return r
}

const validCreateBody = `{
	"email": "a@example.com",
	"password": "long-enough-password",
	"first_name": "Ada",
	"last_name": "Lovelace"
}`

func TestCreateUser(t *testing.T) {
	t.Parallel()

	userStore := newFakeUserStore()
	router := newUserRouter(newTestUserHandler(t, userStore))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/users", strings.NewReader(validCreateBody)))

	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "a@example.com", body["email"])
	assert.Equal(t, "Ada Lovelace", body["full_name"])

	// Only allow-listed fields: no password material of any kind.
	for key := range body {
		assert.NotContains(t, key, "password")
	}

	t.Run("repeat_create_conflicts", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/users", strings.NewReader(validCreateBody)))

		assert.Equal(t, http.StatusConflict, w.Code)

		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "email already taken", resp.Error)
	})
}

func TestCreateUser_ConcurrentDuplicates(t *testing.T) {
	t.Parallel()

	router := newUserRouter(newTestUserHandler(t, newFakeUserStore()))

	// Two simultaneous registrations with the same email: exactly one may
	// win, the other must see a conflict. Uniqueness is the store's job, so
	// no in-handler coordination is allowed to paper over this.
	const attempts = 2
	codes := make(chan int, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := httptest.NewRecorder()
			router.ServeHTTP(w,
				httptest.NewRequest("POST", "/users", strings.NewReader(validCreateBody)))
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	counts := map[int]int{}
	for code := range codes {
		counts[code]++
	}
	assert.Equal(t, 1, counts[http.StatusCreated], "exactly one create may succeed")
	assert.Equal(t, 1, counts[http.StatusConflict], "the loser must get a conflict")
}

func TestCreateUser_MissingFieldsAllReported(t *testing.T) {
	t.Parallel()

	router := newUserRouter(newTestUserHandler(t, newFakeUserStore()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/users", strings.NewReader(`{}`)))

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error  string              `json:"error"`
		Errors []domain.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	fields := make([]string, 0, len(body.Errors))
	for _, f := range body.Errors {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{"email", "password", "first_name", "last_name"}, fields,
		"every missing field must be listed, not just the first")
}

func TestCreateUser_UndeclaredParameterRejected(t *testing.T) {
	t.Parallel()

	router := newUserRouter(newTestUserHandler(t, newFakeUserStore()))

	body := `{"email":"a@example.com","password":"long-enough-password",
		"first_name":"Ada","last_name":"Lovelace","role":"admin"}`
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/users", strings.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// seedN inserts n users with strictly increasing creation times so listing
// order is deterministic.
func seedN(t *testing.T, userStore *fakeUserStore, n int) []*domain.User {
	t.Helper()

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	users := make([]*domain.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := domain.NewUser(
			fmt.Sprintf("user%02d@example.com", i),
			"long-enough-password",
			"User",
			fmt.Sprintf("%02d", i),
		)
		require.NoError(t, err)
		user.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		user.UpdatedAt = user.CreatedAt
		require.NoError(t, userStore.Create(context.Background(), user))
		users = append(users, user)
	}
	return users
}

func listUsers(t *testing.T, router chi.Router, query string) ListUsersResponse {
	t.Helper()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/users"+query, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListUsersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListUsers_PagedByPageNumber(t *testing.T) {
	t.Parallel()

	userStore := newFakeUserStore()
	seedN(t, userStore, 5)
	router := newUserRouter(newTestUserHandler(t, userStore))

	page1 := listUsers(t, router, "?page=1&per_page=2")
	require.Len(t, page1.Users, 2)
	assert.Equal(t, "user00@example.com", page1.Users[0]["email"])
	assert.Equal(t, "user01@example.com", page1.Users[1]["email"])
	assert.Equal(t, 1, page1.Page)
	assert.Equal(t, 2, page1.PerPage)

	page3 := listUsers(t, router, "?page=3&per_page=2")
	require.Len(t, page3.Users, 1)
	assert.Equal(t, "user04@example.com", page3.Users[0]["email"])
	assert.Empty(t, page3.NextCursor, "short page means there is no next page")
}

func TestListUsers_PagedByCursor(t *testing.T) {
	t.Parallel()

	userStore := newFakeUserStore()
	seedN(t, userStore, 5)
	router := newUserRouter(newTestUserHandler(t, userStore))

	first := listUsers(t, router, "?per_page=2")
	require.Len(t, first.Users, 2)
	require.NotEmpty(t, first.NextCursor)

	second := listUsers(t, router, "?per_page=2&cursor="+first.NextCursor)
	require.Len(t, second.Users, 2)
	assert.Equal(t, "user02@example.com", second.Users[0]["email"])
	assert.Equal(t, "user03@example.com", second.Users[1]["email"])

	third := listUsers(t, router, "?per_page=2&cursor="+second.NextCursor)
	require.Len(t, third.Users, 1)
	assert.Equal(t, "user04@example.com", third.Users[0]["email"])
}

func TestListUsers_NeverUnpaginated(t *testing.T) {
	t.Parallel()

	userStore := newFakeUserStore()
	seedN(t, userStore, 3)
	router := newUserRouter(newTestUserHandler(t, userStore))

	// No parameters still yields a bounded page with the default size.
	resp := listUsers(t, router, "")
	assert.Equal(t, 20, resp.PerPage)

	// Oversized per_page is capped, not honored.
	resp = listUsers(t, router, "?per_page=100000")
	assert.Equal(t, 100, resp.PerPage)
}

func TestListUsers_BadParams(t *testing.T) {
	t.Parallel()

	router := newUserRouter(newTestUserHandler(t, newFakeUserStore()))

	for _, query := range []string{"?page=zero", "?page=-1", "?per_page=nope", "?cursor=@@@"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/users"+query, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, "query %q", query)
	}
}

func TestListUsers_NeverExposesCredentialHash(t *testing.T) {
	t.Parallel()

	userStore := newFakeUserStore()
	seedN(t, userStore, 3)
	router := newUserRouter(newTestUserHandler(t, userStore))

	resp := listUsers(t, router, "")
	require.NotEmpty(t, resp.Users)
	for _, user := range resp.Users {
		for key := range user {
			assert.NotContains(t, key, "password")
		}
	}
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	userStore := newFakeUserStore()
	users := seedN(t, userStore, 1)
	router := newUserRouter(newTestUserHandler(t, userStore))

	t.Run("found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/users/"+users[0].ID.String(), nil))
		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, users[0].Email, body["email"])
	})

	t.Run("unknown_id_is_404", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/users/"+uuid.NewString(), nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed_id_is_400", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/users/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestMe(t *testing.T) {
	t.Parallel()

	userStore := newFakeUserStore()
	users := seedN(t, userStore, 1)
	router := newUserRouter(newTestUserHandler(t, userStore))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, withUserID(httptest.NewRequest("GET", "/me", nil), users[0].ID))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, users[0].Email, body["email"])

	t.Run("no_identity_is_401", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	userStore := newFakeUserStore()
	users := seedN(t, userStore, 2)
	router := newUserRouter(newTestUserHandler(t, userStore))

	t.Run("self_update_succeeds", func(t *testing.T) {
		body := `{"first_name":"Augusta"}`
		r := httptest.NewRequest("PUT", "/users/"+users[0].ID.String(), strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withUserID(r, users[0].ID))

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Augusta", resp["first_name"])
	})

	t.Run("updating_another_user_is_forbidden", func(t *testing.T) {
		body := `{"first_name":"Mallory"}`
		r := httptest.NewRequest("PUT", "/users/"+users[1].ID.String(), strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withUserID(r, users[0].ID))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("email_conflict_is_409", func(t *testing.T) {
		body := `{"email":"` + users[1].Email + `"}`
		r := httptest.NewRequest("PUT", "/users/"+users[0].ID.String(), strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withUserID(r, users[0].ID))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	userStore := newFakeUserStore()
	users := seedN(t, userStore, 2)
	router := newUserRouter(newTestUserHandler(t, userStore))

	t.Run("deleting_another_user_is_forbidden", func(t *testing.T) {
		r := httptest.NewRequest("DELETE", "/users/"+users[1].ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withUserID(r, users[0].ID))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("self_delete_succeeds", func(t *testing.T) {
		r := httptest.NewRequest("DELETE", "/users/"+users[0].ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withUserID(r, users[0].ID))
		assert.Equal(t, http.StatusNoContent, w.Code)

		_, err := userStore.GetByID(context.Background(), users[0].ID)
		assert.Error(t, err)
	})
}
