package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/internal/domain/entity"
	"shopkart/internal/domain/repository"
	"shopkart/pkg/helpers"
)

// CodeMailer delivers one-time codes. A failure after the code is already
// persisted is surfaced to the caller as ErrDeliveryFailed; the stored code
// stays valid and a resend recovers the flow.
type CodeMailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
	SendResetCode(ctx context.Context, email, code string) error
}

// AuthService owns the user aggregate: registration, login, the email
// verification and password reset code lifecycles, and session issuance.
type AuthService struct {
	Users  repository.UserRepository
	Mailer CodeMailer
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger *logrus.Logger

	// OTPTTL is how long an issued code stays valid. Defaults to 5 minutes.
	OTPTTL time.Duration

	// GenCode produces a fresh code; swappable in tests.
	GenCode func() (string, error)
}

func NewAuthService(users repository.UserRepository, mailer CodeMailer, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Users:   users,
		Mailer:  mailer,
		JWT:     jwt,
		Redis:   rdb,
		Logger:  logger,
		OTPTTL:  5 * time.Minute,
		GenCode: helpers.GenOTPCode,
	}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type RegisterResult struct {
	UserID string
	// Resent is true when the email already belonged to an unverified
	// account and a fresh verification code was issued instead.
	Resent bool
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (s *AuthService) newChallenge() (*entity.OTPChallenge, error) {
	code, err := s.GenCode()
	if err != nil {
		return nil, err
	}
	return entity.NewOTPChallenge(code, s.OTPTTL), nil
}

// Register creates a local account and issues its verification code. An
// existing unverified account gets a fresh code instead; an existing
// verified account is a conflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	existing, err := s.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsVerified {
			return nil, ErrDuplicate
		}
		ch, err := s.newChallenge()
		if err != nil {
			return nil, err
		}
		existing.EmailOTP = ch
		if err := s.Users.Update(ctx, existing); err != nil {
			return nil, err
		}
		if err := s.deliverVerification(ctx, existing.Email, ch.Code); err != nil {
			return nil, err
		}
		return &RegisterResult{UserID: existing.ID.Hex(), Resent: true}, nil
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	ch, err := s.newChallenge()
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:        in.Email,
		Password:     hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         entity.RoleCustomer,
		AuthProvider: entity.ProviderLocal,
		EmailOTP:     ch,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	if err := s.deliverVerification(ctx, u.Email, ch.Code); err != nil {
		return nil, err
	}
	return &RegisterResult{UserID: u.ID.Hex()}, nil
}

// IssueVerificationCode issues a fresh email verification code, replacing
// any outstanding one. Codes do not stack.
func (s *AuthService) IssueVerificationCode(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrNotFound
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}
	ch, err := s.newChallenge()
	if err != nil {
		return err
	}
	u.EmailOTP = ch
	if err := s.Users.Update(ctx, u); err != nil {
		return err
	}
	return s.deliverVerification(ctx, u.Email, ch.Code)
}

// ConsumeVerificationCode validates the submitted code and marks the
// account verified, clearing the challenge.
func (s *AuthService) ConsumeVerificationCode(ctx context.Context, email, code string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrNotFound
	}
	if u.IsVerified {
		return ErrAlreadyVerified
	}
	if !u.EmailOTP.Matches(code) {
		return ErrInvalidCode
	}
	if u.EmailOTP.ExpiredAt(time.Now()) {
		return ErrCodeExpired
	}
	u.IsVerified = true
	u.EmailOTP = nil
	return s.Users.Update(ctx, u)
}

// IssueResetCode starts the password reset flow. Reset presupposes a
// verified email, so unverified accounts never hold reset codes.
func (s *AuthService) IssueResetCode(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrNotFound
	}
	if !u.IsVerified {
		return ErrNotVerified
	}
	ch, err := s.newChallenge()
	if err != nil {
		return err
	}
	u.ResetOTP = ch
	if err := s.Users.Update(ctx, u); err != nil {
		return err
	}
	if err := s.Mailer.SendResetCode(ctx, u.Email, ch.Code); err != nil {
		s.logDeliveryFailure(u.Email, err)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// VerifyResetCode confirms the reset code without consuming it; the code
// stays comparable until the password change completes.
func (s *AuthService) VerifyResetCode(ctx context.Context, email, code string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrNotFound
	}
	if !u.ResetOTP.Matches(code) {
		return ErrInvalidCode
	}
	if u.ResetOTP.ExpiredAt(time.Now()) {
		return ErrCodeExpired
	}
	u.ResetOTP.Verified = true
	return s.Users.Update(ctx, u)
}

// CompleteReset re-validates code, expiry, and the verified flag, then
// stores the new password hash and clears the whole challenge.
func (s *AuthService) CompleteReset(ctx context.Context, email, code, newPassword string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrNotFound
	}
	if !u.ResetOTP.Matches(code) {
		return ErrInvalidCode
	}
	if u.ResetOTP.ExpiredAt(time.Now()) {
		return ErrCodeExpired
	}
	if !u.ResetOTP.Verified {
		return ErrResetNotVerified
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.Password = hash
	u.ResetOTP = nil
	return s.Users.Update(ctx, u)
}

// Login validates credentials and issues a session. Unverified local
// accounts and Google accounts cannot log in with a password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if u == nil {
		return nil, TokenPair{}, ErrNotFound
	}
	if u.IsExternal() {
		return nil, TokenPair{}, ErrExternalAccount
	}
	if !u.IsVerified {
		return nil, TokenPair{}, ErrNotVerified
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// GoogleProfile is the identity asserted by Google after a successful
// OAuth exchange.
type GoogleProfile struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
}

// LoginWithGoogle signs in an externally-authenticated user, linking or
// creating the local record as needed. Google accounts are pre-verified
// and never gate on local OTP checks.
func (s *AuthService) LoginWithGoogle(ctx context.Context, p GoogleProfile) (*entity.User, TokenPair, error) {
	u, err := s.Users.GetByGoogleID(ctx, p.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if u == nil {
		u, err = s.Users.GetByEmail(ctx, p.Email)
		if err != nil {
			return nil, TokenPair{}, err
		}
		if u != nil {
			// Link the Google identity to the existing local account.
			u.GoogleID = p.ID
			u.IsVerified = true
			if err := s.Users.Update(ctx, u); err != nil {
				return nil, TokenPair{}, err
			}
		} else {
			u = &entity.User{
				Email:        p.Email,
				Password:     entity.ExternalPasswordSentinel,
				FirstName:    p.FirstName,
				LastName:     p.LastName,
				Role:         entity.RoleCustomer,
				IsVerified:   true,
				GoogleID:     p.ID,
				AuthProvider: entity.ProviderGoogle,
			}
			if err := s.Users.Create(ctx, u); err != nil {
				return nil, TokenPair{}, err
			}
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID.Hex(), sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID.Hex(), sid)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID.Hex(),
			"email":      u.Email,
			"name":       u.FullName(),
			"role":       u.Role,
			"sid":        sid,
			"created_at": nowRFC3339(),
		}
		key := sessionKey(u.ID.Hex())
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the session id and both tokens after validating the
// refresh token against the active session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil || u == nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, sessionKey(claims.UserID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, ErrInvalidCredentials
		}
	}
	return s.IssueTokens(ctx, u)
}

// GetProfile looks a user up by the id stored in the session.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *AuthService) deliverVerification(ctx context.Context, email, code string) error {
	if err := s.Mailer.SendVerificationCode(ctx, email, code); err != nil {
		s.logDeliveryFailure(email, err)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

func (s *AuthService) logDeliveryFailure(email string, err error) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("email", email).Error("otp email delivery failed; code stays valid until expiry")
	}
}
