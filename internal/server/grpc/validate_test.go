package grpc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestValidateEmail(t *testing.T) {
	for _, ok := range []string{"a@b.io", " ann@example.com ", "first.last+tag@sub.example.org"} {
		assert.NoError(t, validateEmail(ok), ok)
	}
	for _, bad := range []string{"", "   ", "plain", "Ann <ann@example.com>", "@example.com"} {
		assert.Equal(t, codes.InvalidArgument, status.Code(validateEmail(bad)), bad)
	}
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, validatePassword("secret"))
	assert.NoError(t, validatePassword("пароль"))
	assert.NoError(t, validatePassword(strings.Repeat("x", 72)))

	assert.Equal(t, codes.InvalidArgument, status.Code(validatePassword("12345")))
	assert.Equal(t, codes.InvalidArgument, status.Code(validatePassword(strings.Repeat("x", 73))))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, validateName("Ann"))
	assert.Equal(t, codes.InvalidArgument, status.Code(validateName(" \t")))
}
