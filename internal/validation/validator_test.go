package validation

import (
	"net/http"
	"testing"

	"eventflex/internal/apperr"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
	IFSC     string `json:"ifsc" validate:"omitempty,ifsc"`
	Role     string `json:"role" validate:"required,oneof=host organizer gig"`
}

func TestStruct(t *testing.T) {
	valid := sample{Email: "a@b.io", Password: "secret#123", IFSC: "HDFC0001234", Role: "gig"}
	assert.NoError(t, Struct(valid))

	tests := []struct {
		name    string
		mutate  func(*sample)
		message string
	}{
		{"missing email", func(s *sample) { s.Email = "" }, "email is required"},
		{"bad email", func(s *sample) { s.Email = "nope" }, "email must be a valid email address"},
		{"weak password", func(s *sample) { s.Password = "password1" }, "password must be 8-72 characters"},
		{"bad ifsc", func(s *sample) { s.IFSC = "HDFC1234567" }, "ifsc must be a valid IFSC code"},
		{"admin role", func(s *sample) { s.Role = "admin" }, "role must be one of: host organizer gig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := Struct(s)
			assert.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestStrongPassword(t *testing.T) {
	assert.True(t, StrongPassword("abcd!efg"))
	assert.False(t, StrongPassword("abc!"))
	assert.False(t, StrongPassword("abcdefghij"))
}
