package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSupabaseAdmin struct {
	mu      sync.Mutex
	users   []AdminUser
	created []CreateUserRequest
	deleted []string
	apiKeys []string
}

func (f *fakeSupabaseAdmin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiKeys = append(f.apiKeys, r.Header.Get("apikey"))

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/v1/admin/users":
		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.created = append(f.created, req)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(AdminUser{ID: "new-id", Email: req.Email})
	case r.Method == http.MethodGet && r.URL.Path == "/auth/v1/admin/users":
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(listUsersResponse{Users: f.users})
	case r.Method == http.MethodDelete:
		f.deleted = append(f.deleted, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestAdminClient_CreateUser(t *testing.T) {
	fake := &fakeSupabaseAdmin{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := NewAdminClient(srv.URL+"/", "service-key")
	id, err := c.CreateUser(context.Background(), "mentor@example.com", "pw", "mentor")
	require.NoError(t, err)

	assert.Equal(t, "new-id", id)
	require.Len(t, fake.created, 1)
	assert.True(t, fake.created[0].EmailConfirm)
	assert.Equal(t, "mentor", fake.created[0].AppMetadata["role"])
	assert.Equal(t, []string{"service-key"}, fake.apiKeys)
}

func TestAdminClient_DeleteUserByEmail(t *testing.T) {
	fake := &fakeSupabaseAdmin{users: []AdminUser{
		{ID: "u1", Email: "Mentor@Example.com"},
		{ID: "u2", Email: "mentee@example.com"},
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	c := NewAdminClient(srv.URL, "service-key")

	require.NoError(t, c.DeleteUserByEmail(context.Background(), "mentor@example.com"))
	assert.Equal(t, []string{"/auth/v1/admin/users/u1"}, fake.deleted)

	require.NoError(t, c.DeleteUserByEmail(context.Background(), "nobody@example.com"))
	assert.Len(t, fake.deleted, 1)
}

func TestAdminClient_CreateUserError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"msg":"email exists"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := NewAdminClient(srv.URL, "k").CreateUser(context.Background(), "a@b.c", "pw", "mentee")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}
