// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	auditstore "github.com/dalemusser/campushub/internal/app/store/audit"
	otpstore "github.com/dalemusser/campushub/internal/app/store/otp"
	"github.com/dalemusser/campushub/internal/app/system/indexes"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ConnectDB opens the MongoDB client and verifies it with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return DBDeps{
		CampusHubMongoClient:   client,
		CampusHubMongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates collections with their validators, then builds the
// indexes. Index builds touch disjoint collections and run concurrently.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.CampusHubMongoDatabase

	if err := validators.EnsureAll(ctx, db); err != nil {
		logger.Error("collection validators failed", zap.Error(err))
		return fmt.Errorf("validators: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := indexes.EnsureAll(gctx, db); err != nil {
			return fmt.Errorf("indexes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := otpstore.New(db, appCfg.OTPExpiry).EnsureIndexes(gctx); err != nil {
			return fmt.Errorf("otp indexes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := auditstore.New(db).EnsureIndexes(gctx); err != nil {
			return fmt.Errorf("audit indexes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("schema setup failed", zap.Error(err))
		return err
	}
	logger.Info("schema ready")
	return nil
}
