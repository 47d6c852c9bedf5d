package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid password")

// OwnerService checks the board owner's passcode against a bcrypt hash.
// With no hash configured the board is open and Enabled reports false.
type OwnerService struct {
	hash []byte
}

func NewOwnerService(passwordHash string) *OwnerService {
	return &OwnerService{hash: []byte(passwordHash)}
}

func (s *OwnerService) Enabled() bool {
	return len(s.hash) > 0
}

// ValidatePassword returns ErrInvalidCredentials on any mismatch.
func (s *OwnerService) ValidatePassword(password string) error {
	if !s.Enabled() || password == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
