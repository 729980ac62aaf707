package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "user id segment",
			in:   "/api/v1/users/3f9d1c2e-8a4b-4c6d-9e0f-123456789abc",
			want: "/api/v1/users/{user_id}",
		},
		{
			name: "role id segment under roles namespace",
			in:   "/api/v1/roles/3f9d1c2e-8a4b-4c6d-9e0f-123456789abc",
			want: "/api/v1/roles/{role_id}",
		},
		{
			name: "no dynamic segment",
			in:   "/api/v1/classes",
			want: "/api/v1/classes",
		},
		{
			name: "non uuid segment untouched",
			in:   "/api/v1/users/not-a-uuid",
			want: "/api/v1/users/not-a-uuid",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePath(tc.in))
		})
	}
}

func TestAllowed(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		method string
		roles  []string
		want   bool
	}{
		{"admin may list users", "/api/v1/users", http.MethodGet, []string{"admin"}, true},
		{"client may not list users", "/api/v1/users", http.MethodGet, []string{"client"}, false},
		{"any role may book", "/api/v1/book", http.MethodPost, []string{"client"}, true},
		{"any role may view classes", "/api/v1/classes", http.MethodGet, []string{"client"}, true},
		{"role patch is admin only", "/api/v1/roles/3f9d1c2e-8a4b-4c6d-9e0f-123456789abc", http.MethodPatch, []string{"client"}, false},
		{"role patch for admin", "/api/v1/roles/3f9d1c2e-8a4b-4c6d-9e0f-123456789abc", http.MethodPatch, []string{"admin"}, true},
		{"user delete is admin only", "/api/v1/users/3f9d1c2e-8a4b-4c6d-9e0f-123456789abc", http.MethodDelete, []string{"client", "instructor"}, false},
		{"unknown path denied", "/api/v1/unknown", http.MethodGet, []string{"admin"}, false},
		{"unknown method denied", "/api/v1/classes", http.MethodDelete, []string{"admin"}, false},
		{"no roles still passes wildcard", "/api/v1/bookings", http.MethodGet, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allowed(tc.path, tc.method, tc.roles))
		})
	}
}
