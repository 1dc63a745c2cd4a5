package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveRole(t *testing.T) {
	tests := []struct {
		name       string
		email      string
		adminEmail string
		want       Role
	}{
		{name: "allowlisted admin", email: "admin@jmefit.com", adminEmail: "admin@jmefit.com", want: RoleAdmin},
		{name: "case insensitive match", email: "Admin@JMEFit.com", adminEmail: "admin@jmefit.com", want: RoleAdmin},
		{name: "regular user", email: "sam@example.com", adminEmail: "admin@jmefit.com", want: RoleUser},
		{name: "empty allowlist never admin", email: "admin@jmefit.com", adminEmail: "", want: RoleUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveRole(tt.email, tt.adminEmail))
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "anonymous", StateAnonymous.String())
	assert.Equal(t, "authenticated", StateAuthenticated.String())
}

func TestSession_Authenticated(t *testing.T) {
	assert.False(t, Session{ID: "s1"}.Authenticated())
	assert.True(t, Session{ID: "s1", UID: "u1"}.Authenticated())
}
