// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	eventsfeature "github.com/dalemusser/campushub/internal/app/features/events"
	forumfeature "github.com/dalemusser/campushub/internal/app/features/forum"
	healthfeature "github.com/dalemusser/campushub/internal/app/features/health"
	identityfeature "github.com/dalemusser/campushub/internal/app/features/identity"
	usersfeature "github.com/dalemusser/campushub/internal/app/features/users"
	"github.com/dalemusser/campushub/internal/app/policy/accountpolicy"
	auditstore "github.com/dalemusser/campushub/internal/app/store/audit"
	otpstore "github.com/dalemusser/campushub/internal/app/store/otp"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/apierr"
	"github.com/dalemusser/campushub/internal/app/system/auditlog"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/mailer"
	"github.com/dalemusser/campushub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// CampusHub builds the token issuer, mailer, login limiter and audit
// logger once, then registers the identity, event, forum and directory
// routes on a single router. Their paths interleave under /api, so each
// feature registers onto the shared router rather than being mounted.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.CampusHubMongoDatabase

	issuer, err := auth.NewIssuer(auth.IssuerConfig{
		AccessSecret:  appCfg.JWTSecret,
		RefreshSecret: appCfg.JWTRefreshSecret,
		AccessTTL:     appCfg.AccessTokenTTL,
		RefreshTTL:    appCfg.RefreshTokenTTL,
	})
	if err != nil {
		logger.Error("token issuer init failed", zap.Error(err))
		return nil, err
	}

	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)

	audits := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})
	limiter := ratelimit.NewLoginLimiter(appCfg.LoginRateIP, appCfg.LoginRateEmail)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthfeature.Routes(r, healthfeature.NewHandler(deps.CampusHubMongoClient, logger))

	// Registration, sign-in and tokens
	identitySvc := &identityfeature.Service{
		Dir:      userstore.NewDirectory(db),
		OTP:      otpstore.New(db, appCfg.OTPExpiry),
		Mail:     mail,
		Tokens:   issuer,
		Policy:   accountpolicy.Policy{EmailDomain: appCfg.EmailDomain},
		SiteName: appCfg.MailFromName,
		Log:      logger,
	}
	identityfeature.Routes(r, identityfeature.NewHandler(identitySvc, limiter, audits, logger))

	// Events
	eventsHandler := eventsfeature.NewHandler(eventsfeature.NewService(db, logger), audits, logger)
	eventsfeature.Routes(r, eventsHandler, issuer)

	// Forum
	forumHandler := forumfeature.NewHandler(forumfeature.NewService(db, logger), audits, logger)
	forumfeature.Routes(r, forumHandler, issuer)

	// User directory and roles
	usersHandler := usersfeature.NewHandler(usersfeature.NewService(db, logger), audits, logger)
	usersfeature.Routes(r, usersHandler, issuer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierr.WriteMessage(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apierr.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	logger.Info("routes registered", zap.Strings("cors_origins", appCfg.CORSAllowedOrigins))
	return r, nil
}
