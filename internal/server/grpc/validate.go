package grpc

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	minPasswordLen = 6
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return status.Error(codes.InvalidArgument, "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return status.Error(codes.InvalidArgument, "email is malformed")
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return status.Errorf(codes.InvalidArgument, "password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return status.Errorf(codes.InvalidArgument, "password must be at most %d bytes", maxPasswordBytes)
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return status.Error(codes.InvalidArgument, "name is required")
	}
	return nil
}
