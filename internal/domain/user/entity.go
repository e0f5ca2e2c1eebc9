package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNegativeCredits = errors.New("credits cannot be negative")

// DefaultSignupCredits is granted to every new account so the redemption flow
// can be exercised without a separate credit-earning path.
const DefaultSignupCredits int64 = 2500

// User entity. Credit balances are integer credit units; the cash value of a
// credit is pricing configuration, not a property of the user.
type User struct {
	id             uuid.UUID
	email          Email
	passwordHash   string
	role           Role
	firstName      string
	lastName       string
	credits        int64
	pendingCredits int64
	isActive       bool
	lastLogin      *time.Time
	createdAt      time.Time
	updatedAt      time.Time
}

func NewUser(email Email, passwordHash string, role Role, firstName, lastName string) *User {
	return &User{
		id:           uuid.New(),
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		firstName:    firstName,
		lastName:     lastName,
		credits:      DefaultSignupCredits,
		isActive:     true,
	}
}

func (u *User) ID() uuid.UUID         { return u.id }
func (u *User) Email() Email          { return u.email }
func (u *User) PasswordHash() string  { return u.passwordHash }
func (u *User) Role() Role            { return u.role }
func (u *User) FirstName() string     { return u.firstName }
func (u *User) LastName() string      { return u.lastName }
func (u *User) Credits() int64        { return u.credits }
func (u *User) PendingCredits() int64 { return u.pendingCredits }
func (u *User) IsActive() bool        { return u.isActive }
func (u *User) LastLogin() *time.Time { return u.lastLogin }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
func (u *User) UpdatedAt() time.Time  { return u.updatedAt }

// HasPendingCredits reports whether the account is in the hold state that
// blocks new quotes and redemptions until the pending balance is resolved.
func (u *User) HasPendingCredits() bool {
	return u.pendingCredits > 0
}
