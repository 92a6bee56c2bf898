// Package entities contains the domain entities of the ledger:
// User, Account, Transaction, LedgerEntry and IdempotencyRecord.
package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nissmart/ledger/internal/domain/errors"
)

// User represents an end user of the ledger. A user owns zero or more
// accounts (at most one per currency) and is never destroyed by the core.
type User struct {
	id        uuid.UUID
	email     string
	fullName  string
	isActive  bool
	createdAt time.Time
	updatedAt time.Time
}

// NewUser creates a new active user.
func NewUser(email, fullName string) (*User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.ValidationError{Field: "email", Message: "valid email is required"}
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, errors.ValidationError{Field: "full_name", Message: "full name is required"}
	}

	now := time.Now().UTC()
	return &User{
		id:        uuid.New(),
		email:     email,
		fullName:  fullName,
		isActive:  true,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructUser rebuilds a User from stored data.
func ReconstructUser(id uuid.UUID, email, fullName string, isActive bool, createdAt, updatedAt time.Time) *User {
	return &User{
		id:        id,
		email:     email,
		fullName:  fullName,
		isActive:  isActive,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Email() string        { return u.email }
func (u *User) FullName() string     { return u.fullName }
func (u *User) IsActive() bool       { return u.isActive }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
