package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/campushub/internal/app/policy/accountpolicy"
	otpstore "github.com/dalemusser/campushub/internal/app/store/otp"
	"github.com/dalemusser/campushub/internal/app/store/revision"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/authutil"
	"github.com/dalemusser/campushub/internal/app/system/mailer"
	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Service holds the account workflows behind the identity routes.
type Service struct {
	Dir      *userstore.Directory
	OTP      *otpstore.Store
	Mail     mailer.Sender
	Tokens   *auth.Issuer
	Policy   accountpolicy.Policy
	SiteName string
	Log      *zap.Logger
}

// Register creates an unverified account and emails its first passcode.
func (s *Service) Register(ctx context.Context, in *accountpolicy.Registration) (*models.User, error) {
	if err := s.Policy.CheckRegistration(in); err != nil {
		return nil, err
	}

	exists, err := s.Dir.Exists(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, apierr.Duplicate("Email already exists")
	}

	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.Dir.Users.Create(ctx, models.User{
		Username:     in.Username,
		StudentID:    in.StudentID,
		Email:        in.Email,
		PasswordHash: hash,
		DOB:          in.DOB,
		Role:         models.RoleUser,
		Verified:     false,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return nil, apierr.Duplicate("Email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if _, err := s.sendCode(ctx, &u, false); err != nil {
		return &u, apierr.Internal("Account created, but the verification email could not be sent. Request a new code.", err)
	}
	return &u, nil
}

// VerifyOTP checks the emailed code and marks the account verified.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	email = normalize.Email(email)
	code = strings.TrimSpace(code)
	if email == "" {
		return apierr.Validation("Email is required.")
	}
	if code == "" {
		return apierr.Validation("OTP is required.")
	}

	u, err := s.Dir.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return apierr.NotFound("User not found")
		}
		return fmt.Errorf("load user: %w", err)
	}

	switch err := s.OTP.Verify(ctx, email, code); {
	case err == nil:
	case errors.Is(err, otpstore.ErrInvalidCode), errors.Is(err, otpstore.ErrNotFound):
		return apierr.OTPMismatch()
	case errors.Is(err, otpstore.ErrTooManyAttempts):
		return apierr.TooMany("Too many attempts. Request a new code.")
	default:
		return fmt.Errorf("verify code: %w", err)
	}

	if u.Verified {
		return nil
	}
	u.Verified = true
	if err := s.Dir.Users.Replace(ctx, u); err != nil {
		if errors.Is(err, revision.ErrConflict) {
			return apierr.Conflict(err)
		}
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// ResendOTP replaces the pending code for email and sends it again.
// It returns how many resends the current window has used.
func (s *Service) ResendOTP(ctx context.Context, email string) (int, error) {
	email = normalize.Email(email)
	if email == "" {
		return 0, apierr.Validation("Email is required.")
	}

	u, err := s.Dir.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return 0, apierr.NotFound("User not found")
		}
		return 0, fmt.Errorf("load user: %w", err)
	}

	issued, err := s.sendCode(ctx, u, true)
	if err != nil {
		if errors.Is(err, otpstore.ErrTooManyResends) {
			return 0, apierr.TooMany("Too many resend requests. Please wait before trying again.")
		}
		return 0, apierr.Internal("Failed to resend OTP", err)
	}
	return issued.ResendCount, nil
}

func (s *Service) sendCode(ctx context.Context, u *models.User, isResend bool) (*otpstore.Issued, error) {
	issued, err := s.OTP.Create(ctx, u.Email, isResend)
	if err != nil {
		return nil, err
	}
	msg := mailer.BuildOTPEmail(u.Email, mailer.OTPEmailData{
		SiteName:  s.SiteName,
		Username:  u.Username,
		Code:      issued.Code,
		ExpiresIn: humanDuration(s.OTP.Expiry()),
	})
	if err := s.Mail.Send(ctx, msg); err != nil {
		return nil, fmt.Errorf("send code: %w", err)
	}
	return issued, nil
}

// Login checks credentials against users, then admins, and issues tokens.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, auth.Pair, error) {
	email = normalize.Email(email)
	if email == "" || password == "" {
		return nil, auth.Pair{}, apierr.Validation("Email and password are required")
	}

	u, _, err := s.Dir.Lookup(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, auth.Pair{}, apierr.NotFound("User not found")
		}
		return nil, auth.Pair{}, fmt.Errorf("lookup: %w", err)
	}
	if !authutil.CheckPassword(password, u.PasswordHash) {
		return u, auth.Pair{}, apierr.Unauthorized("Invalid password")
	}

	pair, err := s.Tokens.IssuePair(tokenUser(u))
	if err != nil {
		return u, auth.Pair{}, fmt.Errorf("issue tokens: %w", err)
	}
	return u, pair, nil
}

// Refresh mints a new access token from a refresh token. The role comes
// from the stored account, not from the old token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.User, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, "", apierr.Unauthorized("Refresh Token Required")
	}
	claims, err := s.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, "", apierr.Forbidden("Invalid Refresh Token")
	}

	u, err := s.Resolve(ctx, claims.UserID)
	if err != nil {
		if apierr.IsKind(err, apierr.KindNotFound) {
			return nil, "", apierr.Forbidden("Invalid Refresh Token")
		}
		return nil, "", err
	}

	access, err := s.Tokens.IssueAccess(tokenUser(u))
	if err != nil {
		return nil, "", fmt.Errorf("issue access token: %w", err)
	}
	return u, access, nil
}

// Resolve loads the account a token's id claim points at.
func (s *Service) Resolve(ctx context.Context, userID string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apierr.NotFound("User not found")
	}
	u, _, err := s.Dir.LookupID(ctx, oid)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return nil, apierr.NotFound("User not found")
		}
		return nil, fmt.Errorf("lookup: %w", err)
	}
	return u, nil
}

func tokenUser(u *models.User) auth.User {
	return auth.User{ID: u.ID.Hex(), Email: u.Email, Role: u.Role}
}

// humanDuration renders d for an email body, e.g. "10 minutes".
func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		if h := int(d / time.Hour); h != 1 {
			return fmt.Sprintf("%d hours", h)
		}
		return "1 hour"
	case d >= time.Minute:
		if m := int(d / time.Minute); m != 1 {
			return fmt.Sprintf("%d minutes", m)
		}
		return "1 minute"
	}
	return d.String()
}
