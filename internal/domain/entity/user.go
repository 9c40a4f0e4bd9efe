package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user account can hold.
const (
	RoleCustomer = "customer"
	RoleSeller   = "seller"
	RoleAdmin    = "admin"
)

// Auth providers.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// ExternalPasswordSentinel is stored in the password field of accounts that
// authenticate through Google. It never matches a bcrypt comparison.
const ExternalPasswordSentinel = "google-oauth"

// User is the aggregate root for the auth domain. Passwords are stored as
// bcrypt hashes. EmailOTP and ResetOTP are nil when no code is outstanding
// for the corresponding flow.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string             `json:"email" bson:"email"`
	Password     string             `json:"-" bson:"password"`
	FirstName    string             `json:"first_name" bson:"first_name"`
	LastName     string             `json:"last_name" bson:"last_name"`
	Role         string             `json:"role" bson:"role"`
	IsVerified   bool               `json:"is_verified" bson:"is_verified"`
	GoogleID     string             `json:"-" bson:"google_id,omitempty"`
	AuthProvider string             `json:"auth_provider" bson:"auth_provider"`
	EmailOTP     *OTPChallenge      `json:"-" bson:"email_otp,omitempty"`
	ResetOTP     *OTPChallenge      `json:"-" bson:"reset_otp,omitempty"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// FullName is the display name cached on documents that reference the user.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsExternal reports whether the account authenticates through an external
// identity provider instead of a locally stored password.
func (u *User) IsExternal() bool {
	return u.AuthProvider == ProviderGoogle
}
