// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	auditstore "github.com/dalemusser/campushub/internal/app/store/audit"
	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/auditlog"
	"github.com/dalemusser/campushub/internal/app/system/authutil"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// CampusHub applies TIMEOUT_* overrides and makes sure the bootstrap
// administrator exists.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	audits := auditlog.New(auditstore.New(deps.CampusHubMongoDatabase), logger, auditlog.Config{Auth: appCfg.AuditLogAuth, Admin: appCfg.AuditLogAdmin})
	created, err := ensureDefaultAdmin(ctx, deps, appCfg, logger)
	if err != nil {
		return err
	}
	if created {
		audits.AdminBootstrapped(ctx, appCfg.AdminEmail)
	}
	return nil
}

// ensureDefaultAdmin creates the configured administrator in the admins
// collection when no account holds its email. It reports whether it
// created one. An existing account is left untouched.
func ensureDefaultAdmin(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) (bool, error) {
	if appCfg.AdminEmail == "" {
		logger.Warn("admin_email is blank; skipping bootstrap administrator")
		return false, nil
	}
	admins := userstore.NewAdmins(deps.CampusHubMongoDatabase)

	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	_, err := admins.GetByEmail(ctx, appCfg.AdminEmail)
	if err == nil {
		logger.Debug("bootstrap administrator present", zap.String("email", appCfg.AdminEmail))
		return false, nil
	}
	if !errors.Is(err, userstore.ErrNotFound) {
		return false, fmt.Errorf("look up bootstrap administrator: %w", err)
	}

	hash, err := authutil.HashPassword(appCfg.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("hash bootstrap administrator password: %w", err)
	}
	_, err = admins.Create(ctx, models.User{
		Email:        appCfg.AdminEmail,
		Username:     appCfg.AdminUsername,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Verified:     true,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			// Another instance won the race.
			return false, nil
		}
		return false, fmt.Errorf("create bootstrap administrator: %w", err)
	}
	logger.Info("bootstrap administrator created", zap.String("email", appCfg.AdminEmail))
	return true, nil
}
