package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/internal/domain/entity"
	"shopkart/internal/domain/repository"
	"shopkart/pkg/helpers"
)

type fakeUserRepo struct {
	byID map[primitive.ObjectID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[primitive.ObjectID]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, e := range r.byID {
		if e.Email == u.Email {
			return repository.ErrDuplicateKey
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*entity.User, error) {
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByGoogleID(_ context.Context, googleID string) (*entity.User, error) {
	for _, u := range r.byID {
		if u.GoogleID == googleID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return errors.New("no document")
	}
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

type fakeMailer struct {
	verifications []string
	resets        []string
	fail          bool
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, email, code string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.verifications = append(m.verifications, code)
	return nil
}

func (m *fakeMailer) SendResetCode(_ context.Context, email, code string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.resets = append(m.resets, code)
	return nil
}

func newTestAuthService(repo *fakeUserRepo, m *fakeMailer) *AuthService {
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	s := NewAuthService(repo, m, jwt, nil, nil)
	s.GenCode = func() (string, error) { return "123456", nil }
	return s
}

func mustRegister(t *testing.T, s *AuthService, email string) *RegisterResult {
	t.Helper()
	res, err := s.Register(context.Background(), RegisterInput{
		Email:     email,
		Password:  "hunter22",
		FirstName: "Test",
		LastName:  "User",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return res
}

func TestRegisterIssuesCode(t *testing.T) {
	repo := newFakeUserRepo()
	m := &fakeMailer{}
	s := newTestAuthService(repo, m)

	res := mustRegister(t, s, "a@example.com")
	if res.Resent {
		t.Fatal("fresh registration should not be a resend")
	}
	if len(m.verifications) != 1 || m.verifications[0] != "123456" {
		t.Fatalf("verification code not sent: %v", m.verifications)
	}
	u, _ := repo.GetByEmail(context.Background(), "a@example.com")
	if u == nil || u.EmailOTP == nil || u.EmailOTP.Code != "123456" {
		t.Fatal("challenge not persisted with the user")
	}
	if u.IsVerified {
		t.Fatal("new account must start unverified")
	}
	if u.Password == "hunter22" {
		t.Fatal("password stored in plain text")
	}
}

func TestRegisterExistingUnverifiedResends(t *testing.T) {
	repo := newFakeUserRepo()
	m := &fakeMailer{}
	s := newTestAuthService(repo, m)

	mustRegister(t, s, "a@example.com")
	res := mustRegister(t, s, "a@example.com")
	if !res.Resent {
		t.Fatal("second registration of an unverified email should resend")
	}
	if len(m.verifications) != 2 {
		t.Fatalf("expected 2 sends, got %d", len(m.verifications))
	}
}

func TestRegisterExistingVerifiedConflicts(t *testing.T) {
	repo := newFakeUserRepo()
	m := &fakeMailer{}
	s := newTestAuthService(repo, m)

	mustRegister(t, s, "a@example.com")
	if err := s.ConsumeVerificationCode(context.Background(), "a@example.com", "123456"); err != nil {
		t.Fatalf("ConsumeVerificationCode: %v", err)
	}
	_, err := s.Register(context.Background(), RegisterInput{Email: "a@example.com", Password: "x", FirstName: "a", LastName: "b"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
}

func TestConsumeVerificationCode(t *testing.T) {
	repo := newFakeUserRepo()
	s := newTestAuthService(repo, &fakeMailer{})
	mustRegister(t, s, "a@example.com")
	ctx := context.Background()

	if err := s.ConsumeVerificationCode(ctx, "a@example.com", "000000"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("wrong code: got %v, want ErrInvalidCode", err)
	}
	if err := s.ConsumeVerificationCode(ctx, "a@example.com", "123456"); err != nil {
		t.Fatalf("ConsumeVerificationCode: %v", err)
	}
	u, _ := repo.GetByEmail(ctx, "a@example.com")
	if !u.IsVerified || u.EmailOTP != nil {
		t.Fatal("consume must mark verified and clear the challenge")
	}
	// second consume: the account is already verified
	if err := s.ConsumeVerificationCode(ctx, "a@example.com", "123456"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("got %v, want ErrAlreadyVerified", err)
	}
}

func TestConsumeVerificationCodeExpired(t *testing.T) {
	repo := newFakeUserRepo()
	s := newTestAuthService(repo, &fakeMailer{})
	mustRegister(t, s, "a@example.com")
	ctx := context.Background()

	u, _ := s.Users.GetByEmail(ctx, "a@example.com")
	u.EmailOTP.ExpiresAt = time.Now().Add(-time.Second)
	if err := s.Users.Update(ctx, u); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := s.ConsumeVerificationCode(ctx, "a@example.com", "123456"); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("got %v, want ErrCodeExpired", err)
	}
}

func TestIssueVerificationCodeGuards(t *testing.T) {
	repo := newFakeUserRepo()
	s := newTestAuthService(repo, &fakeMailer{})
	ctx := context.Background()

	if err := s.IssueVerificationCode(ctx, "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	mustRegister(t, s, "a@example.com")
	_ = s.ConsumeVerificationCode(ctx, "a@example.com", "123456")
	if err := s.IssueVerificationCode(ctx, "a@example.com"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("got %v, want ErrAlreadyVerified", err)
	}
}

func verifiedUser(t *testing.T, s *AuthService, email string) {
	t.Helper()
	mustRegister(t, s, email)
	if err := s.ConsumeVerificationCode(context.Background(), email, "123456"); err != nil {
		t.Fatalf("ConsumeVerificationCode: %v", err)
	}
}

func TestResetFlow(t *testing.T) {
	repo := newFakeUserRepo()
	m := &fakeMailer{}
	s := newTestAuthService(repo, m)
	ctx := context.Background()
	verifiedUser(t, s, "a@example.com")

	if err := s.IssueResetCode(ctx, "a@example.com"); err != nil {
		t.Fatalf("IssueResetCode: %v", err)
	}
	if len(m.resets) != 1 {
		t.Fatalf("reset code not sent: %v", m.resets)
	}

	// completing before verifying the code is rejected
	if err := s.CompleteReset(ctx, "a@example.com", "123456", "newpassword"); !errors.Is(err, ErrResetNotVerified) {
		t.Fatalf("got %v, want ErrResetNotVerified", err)
	}

	if err := s.VerifyResetCode(ctx, "a@example.com", "123456"); err != nil {
		t.Fatalf("VerifyResetCode: %v", err)
	}
	if err := s.CompleteReset(ctx, "a@example.com", "123456", "newpassword"); err != nil {
		t.Fatalf("CompleteReset: %v", err)
	}

	u, _ := repo.GetByEmail(ctx, "a@example.com")
	if u.ResetOTP != nil {
		t.Fatal("completed reset must clear the challenge")
	}
	if !helpers.CompareHashAndPassword(u.Password, "newpassword") {
		t.Fatal("new password not stored")
	}

	// the consumed code cannot be replayed
	if err := s.VerifyResetCode(ctx, "a@example.com", "123456"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("got %v, want ErrInvalidCode after completion", err)
	}
}

func TestIssueResetCodeRequiresVerifiedEmail(t *testing.T) {
	repo := newFakeUserRepo()
	s := newTestAuthService(repo, &fakeMailer{})
	mustRegister(t, s, "a@example.com")

	if err := s.IssueResetCode(context.Background(), "a@example.com"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("got %v, want ErrNotVerified", err)
	}
}

func TestVerifyResetCodeExpired(t *testing.T) {
	repo := newFakeUserRepo()
	s := newTestAuthService(repo, &fakeMailer{})
	ctx := context.Background()
	verifiedUser(t, s, "a@example.com")
	if err := s.IssueResetCode(ctx, "a@example.com"); err != nil {
		t.Fatalf("IssueResetCode: %v", err)
	}

	u, _ := s.Users.GetByEmail(ctx, "a@example.com")
	u.ResetOTP.ExpiresAt = time.Now().Add(-time.Minute)
	_ = s.Users.Update(ctx, u)

	if err := s.VerifyResetCode(ctx, "a@example.com", "123456"); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("got %v, want ErrCodeExpired", err)
	}
}

func TestDeliveryFailureKeepsCode(t *testing.T) {
	repo := newFakeUserRepo()
	m := &fakeMailer{fail: true}
	s := newTestAuthService(repo, m)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterInput{Email: "a@example.com", Password: "hunter22", FirstName: "T", LastName: "U"})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("got %v, want ErrDeliveryFailed", err)
	}
	// the code was persisted before the send, so it still verifies
	if err := s.ConsumeVerificationCode(ctx, "a@example.com", "123456"); err != nil {
		t.Fatalf("code should remain usable after delivery failure: %v", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	s := newTestAuthService(repo, &fakeMailer{})
	ctx := context.Background()
	verifiedUser(t, s, "a@example.com")

	u, pair, err := s.Login(ctx, "a@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u.Email != "a@example.com" || pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("login did not issue a token pair")
	}

	claims, err := s.JWT.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != u.ID.Hex() || claims.SessionID == "" {
		t.Fatal("claims missing user or session id")
	}

	if _, _, err := s.Login(ctx, "a@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("got %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := s.Login(ctx, "ghost@example.com", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestLoginUnverified(t *testing.T) {
	repo := newFakeUserRepo()
	s := newTestAuthService(repo, &fakeMailer{})
	mustRegister(t, s, "a@example.com")

	if _, _, err := s.Login(context.Background(), "a@example.com", "hunter22"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("got %v, want ErrNotVerified", err)
	}
}

func TestLoginGoogleAccountRejectsPassword(t *testing.T) {
	repo := newFakeUserRepo()
	s := newTestAuthService(repo, &fakeMailer{})
	ctx := context.Background()

	_, _, err := s.LoginWithGoogle(ctx, GoogleProfile{ID: "g-1", Email: "g@example.com", FirstName: "G", LastName: "User"})
	if err != nil {
		t.Fatalf("LoginWithGoogle: %v", err)
	}
	if _, _, err := s.Login(ctx, "g@example.com", "anything"); !errors.Is(err, ErrExternalAccount) {
		t.Fatalf("got %v, want ErrExternalAccount", err)
	}
}

func TestLoginWithGoogleLinksExistingAccount(t *testing.T) {
	repo := newFakeUserRepo()
	s := newTestAuthService(repo, &fakeMailer{})
	ctx := context.Background()
	mustRegister(t, s, "a@example.com") // unverified local account

	u, _, err := s.LoginWithGoogle(ctx, GoogleProfile{ID: "g-2", Email: "a@example.com", FirstName: "T", LastName: "U"})
	if err != nil {
		t.Fatalf("LoginWithGoogle: %v", err)
	}
	if u.GoogleID != "g-2" || !u.IsVerified {
		t.Fatal("google login must link the account and mark it verified")
	}

	// subsequent logins find the user by google id
	again, _, err := s.LoginWithGoogle(ctx, GoogleProfile{ID: "g-2", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("second LoginWithGoogle: %v", err)
	}
	if again.ID != u.ID {
		t.Fatal("expected the same account")
	}
}
