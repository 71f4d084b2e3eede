// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like ports, TLS,
// logging level and request body limits. Everything specific to CampusHub
// lives here and is passed to the lifecycle hooks.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Token signing. Access and refresh tokens use separate keys.
	JWTSecret        string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	// Registration
	OTPExpiry   time.Duration // lifetime of an emailed passcode
	EmailDomain string        // required email domain; blank accepts any

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string // From email address (e.g., noreply@campushub.local)
	MailFromName string // From display name (e.g., CampusHub)

	// Bootstrap administrator, created on first start
	AdminUsername string
	AdminEmail    string
	AdminPassword string

	// Audit logging: all, db, log, or off
	AuditLogAuth  string
	AuditLogAdmin string

	// CORS and login throttling
	CORSAllowedOrigins []string
	LoginRateIP        int // attempts per minute per client IP
	LoginRateEmail     int // attempts per 5 minutes per email
}
