// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// Development-only signing keys. ValidateConfig rejects them in prod.
const (
	devJWTSecret        = "dev-only-access-secret-change-me"
	devJWTRefreshSecret = "dev-only-refresh-secret-change-me"
)

// appConfigKeys defines the configuration keys for CampusHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: CAMPUSHUB_MONGO_URI, CAMPUSHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "campus_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Tokens
	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HS256 key for access tokens (must be strong in production)"},
	{Name: "jwt_refresh_secret", Default: devJWTRefreshSecret, Desc: "HS256 key for refresh tokens (must differ from jwt_secret)"},
	{Name: "access_token_ttl", Default: "15m", Desc: "Access token lifetime"},
	{Name: "refresh_token_ttl", Default: "168h", Desc: "Refresh token lifetime"},

	// Registration
	{Name: "otp_expiry", Default: "10m", Desc: "Verification code expiry (e.g., 10m, 1h, 90s)"},
	{Name: "email_domain", Default: "imail.sunway.edu.my", Desc: "Required email domain for registration (blank accepts any)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@campushub.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "CampusHub", Desc: "From display name"},

	// Bootstrap administrator
	{Name: "admin_username", Default: "admin", Desc: "Username of the bootstrap administrator"},
	{Name: "admin_email", Default: "admin@sunway.edu.my", Desc: "Email of the bootstrap administrator (created on startup if missing)"},
	{Name: "admin_password", Default: "Admin@123", Desc: "Initial password of the bootstrap administrator"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// HTTP
	{Name: "cors_allowed_origins", Default: "http://localhost:3000", Desc: "Comma-separated CORS origins"},
	{Name: "login_rate_ip", Default: 10, Desc: "Login attempts per minute per client IP"},
	{Name: "login_rate_email", Default: 5, Desc: "Login attempts per 5 minutes per email"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CAMPUSHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CAMPUSHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Tokens
		JWTSecret:        appValues.String("jwt_secret"),
		JWTRefreshSecret: appValues.String("jwt_refresh_secret"),
		AccessTokenTTL:   appValues.Duration("access_token_ttl", 15*time.Minute),
		RefreshTokenTTL:  appValues.Duration("refresh_token_ttl", 7*24*time.Hour),

		// Registration
		OTPExpiry:   appValues.Duration("otp_expiry", 10*time.Minute),
		EmailDomain: appValues.String("email_domain"),

		// Email/SMTP
		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		// Bootstrap administrator
		AdminUsername: appValues.String("admin_username"),
		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),

		// Audit logging
		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		// HTTP
		CORSAllowedOrigins: splitList(appValues.String("cors_allowed_origins")),
		LoginRateIP:        appValues.Int("login_rate_ip"),
		LoginRateEmail:     appValues.Int("login_rate_email"),
	}

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// CampusHub validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and refuses to sign tokens
// with missing, shared or development keys in production.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if err := validateTokens(appCfg, coreCfg != nil && coreCfg.Env == "prod"); err != nil {
		logger.Error("invalid token configuration", zap.Error(err))
		return err
	}
	if appCfg.OTPExpiry <= 0 {
		return errors.New("otp_expiry must be positive")
	}
	return nil
}

func validateTokens(appCfg AppConfig, prod bool) error {
	if appCfg.JWTSecret == "" || appCfg.JWTRefreshSecret == "" {
		return errors.New("jwt_secret and jwt_refresh_secret are required")
	}
	if appCfg.JWTSecret == appCfg.JWTRefreshSecret {
		return errors.New("jwt_secret and jwt_refresh_secret must differ")
	}
	if appCfg.AccessTokenTTL <= 0 || appCfg.RefreshTokenTTL <= 0 {
		return errors.New("access_token_ttl and refresh_token_ttl must be positive")
	}
	if prod && (appCfg.JWTSecret == devJWTSecret || appCfg.JWTRefreshSecret == devJWTRefreshSecret) {
		return errors.New("development jwt secrets are not allowed in prod")
	}
	return nil
}
