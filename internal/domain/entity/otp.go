package entity

import "time"

// OTPChallenge is one outstanding one-time code. A nil *OTPChallenge means
// no code is active for that flow; code and expiry always travel together.
// Verified is used only by the password-reset flow, where a matched code is
// kept until the password change completes.
type OTPChallenge struct {
	Code      string    `json:"-" bson:"code"`
	ExpiresAt time.Time `json:"-" bson:"expires_at"`
	Verified  bool      `json:"-" bson:"verified"`
}

// NewOTPChallenge issues a fresh unverified challenge expiring ttl from now.
func NewOTPChallenge(code string, ttl time.Duration) *OTPChallenge {
	return &OTPChallenge{Code: code, ExpiresAt: time.Now().Add(ttl)}
}

// Matches reports whether the submitted code equals the stored one.
func (c *OTPChallenge) Matches(code string) bool {
	return c != nil && code != "" && c.Code == code
}

// ExpiredAt reports whether the challenge is past its expiry at t.
// The comparison is strict: a check at exactly the expiry instant passes.
func (c *OTPChallenge) ExpiredAt(t time.Time) bool {
	return c == nil || t.After(c.ExpiresAt)
}
