// internal/app/features/identity/handler.go
package identity

import (
	"context"
	"net/http"

	"github.com/dalemusser/campushub/internal/app/policy/accountpolicy"
	"github.com/dalemusser/campushub/internal/app/store/audit"
	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/auditlog"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/jsonio"
	"github.com/dalemusser/campushub/internal/app/system/ratelimit"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves registration, passcode, login and token routes.
type Handler struct {
	Svc      *Service
	Limiter  *ratelimit.LoginLimiter
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs the identity handler.
func NewHandler(svc *Service, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:      svc,
		Limiter:  limiter,
		AuditLog: audit,
		Log:      logger,
	}
}

// HandleRegister handles POST /register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in accountpolicy.Registration
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "register", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Svc.Register(ctx, &in)
	if u != nil {
		h.AuditLog.Registered(ctx, r, u.Email)
	}
	if err != nil {
		apierr.Write(w, h.Log, "register", err)
		return
	}
	h.AuditLog.VerificationCodeSent(ctx, r, u.Email, 0)
	jsonio.Message(w, http.StatusCreated, "Account created successfully")
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   any    `json:"otp"` // clients send it as a number or a string
}

// HandleVerifyOTP handles POST /verify-otp.
func (h *Handler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var in verifyRequest
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "verify-otp", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Svc.VerifyOTP(ctx, in.Email, codeString(in.OTP)); err != nil {
		if e, ok := apierr.As(err); ok && e.Status() < http.StatusInternalServerError && in.Email != "" {
			h.AuditLog.VerificationResult(ctx, r, in.Email, false, e.Message)
		}
		apierr.Write(w, h.Log, "verify-otp", err)
		return
	}
	h.AuditLog.VerificationResult(ctx, r, in.Email, true, "")
	jsonio.Message(w, http.StatusOK, "Account has been created and verified")
}

type emailRequest struct {
	Email string `json:"email"`
}

// HandleResendOTP handles POST /resend-otp.
func (h *Handler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	var in emailRequest
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "resend-otp", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, err := h.Svc.ResendOTP(ctx, in.Email)
	if err != nil {
		apierr.Write(w, h.Log, "resend-otp", err)
		return
	}
	h.AuditLog.VerificationCodeSent(ctx, r, in.Email, n)
	jsonio.Message(w, http.StatusOK, "New OTP has been sent to your email")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	Role         string `json:"role,omitempty"`
}

// HandleLogin handles POST /login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "login", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil {
		if ok, msg := h.Limiter.Check(r, in.Email); !ok {
			h.AuditLog.LoginFailed(ctx, r, in.Email, audit.EventLoginFailedRateLimit, msg)
			jsonio.Write(w, http.StatusTooManyRequests, loginResponse{Message: msg})
			return
		}
	}

	u, pair, err := h.Svc.Login(ctx, in.Email, in.Password)
	if err != nil {
		e, ok := apierr.As(err)
		if !ok || e.Status() >= http.StatusInternalServerError {
			h.Log.Error("login failed", zap.Error(err))
			jsonio.Write(w, http.StatusInternalServerError, loginResponse{Message: "Login failed"})
			return
		}
		switch e.Kind {
		case apierr.KindNotFound:
			h.AuditLog.LoginFailed(ctx, r, in.Email, audit.EventLoginFailedNotFound, e.Message)
		case apierr.KindUnauthorized:
			h.AuditLog.LoginFailed(ctx, r, in.Email, audit.EventLoginFailedPassword, e.Message)
		}
		jsonio.Write(w, e.Status(), loginResponse{Message: e.Message})
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(u.Email)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.Email, u.Role)
	jsonio.Write(w, http.StatusOK, loginResponse{
		Success:      true,
		Message:      "Login successful",
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		Role:         u.Role,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// HandleRefresh handles POST /refresh-token.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := jsonio.Decode(r, &in); err != nil {
		apierr.Write(w, h.Log, "refresh-token", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, access, err := h.Svc.Refresh(ctx, in.RefreshToken)
	if err != nil {
		apierr.Write(w, h.Log, "refresh-token", err)
		return
	}
	h.AuditLog.TokenRefreshed(ctx, r, u.Email)
	jsonio.Write(w, http.StatusOK, map[string]string{"accessToken": access})
}

type tokenUserView struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	StudentID string `json:"studentId"`
}

// ServeValidateToken handles GET /validate-token. It reads the bearer token
// itself so it can answer with its own messages.
func (h *Handler) ServeValidateToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.parseBearer(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Svc.Resolve(ctx, claims.UserID)
	if err != nil {
		apierr.Write(w, h.Log, "validate-token", err)
		return
	}
	jsonio.Write(w, http.StatusOK, map[string]any{
		"message": "Token is valid",
		"user": tokenUserView{
			Username:  u.Username,
			Email:     u.Email,
			Role:      u.Role,
			StudentID: u.StudentID,
		},
	})
}

type roleDetails struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	StudentID   string `json:"studentId"`
	Email       string `json:"email"`
	DOB         string `json:"dob"`
	Gender      string `json:"gender"`
	Nationality string `json:"nationality"`
	Program     string `json:"program"`
	Intake      string `json:"intake"`
	Role        string `json:"role"`
}

// ServeRoleDetails handles GET /api/role-details.
func (h *Handler) ServeRoleDetails(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.parseBearer(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Svc.Resolve(ctx, claims.UserID)
	if err != nil {
		apierr.Write(w, h.Log, "role-details", err)
		return
	}
	jsonio.Write(w, http.StatusOK, roleDetails{
		ID:          u.ID.Hex(),
		Username:    u.Username,
		StudentID:   u.StudentID,
		Email:       u.Email,
		DOB:         u.DOB,
		Gender:      u.Gender,
		Nationality: u.Nationality,
		Program:     u.Program,
		Intake:      u.Intake,
		Role:        u.Role,
	})
}

func (h *Handler) parseBearer(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	token := auth.BearerToken(r)
	if token == "" {
		jsonio.Message(w, http.StatusUnauthorized, "Token not provided")
		return nil, false
	}
	claims, err := h.Svc.Tokens.ParseAccess(token)
	if err != nil {
		jsonio.Message(w, http.StatusForbidden, "Invalid or expired token")
		return nil, false
	}
	return claims, true
}
