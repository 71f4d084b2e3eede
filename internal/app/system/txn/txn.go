// Package txn runs a group of writes as one logical operation.
//
// On a replica set the writes share a MongoDB transaction. On a standalone
// server, where transactions are rejected, the steps run in order and any
// step that fails causes the already-applied steps to be reverted in
// reverse order.
package txn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Step is one write inside a logical operation. Revert must undo Apply and
// is only called after Apply succeeded.
type Step struct {
	Name   string
	Apply  func(ctx context.Context) error
	Revert func(ctx context.Context) error
}

// Run applies steps atomically when the deployment supports transactions,
// falling back to RunSequential otherwise.
func Run(ctx context.Context, client *mongo.Client, log *zap.Logger, steps ...Step) error {
	if client == nil {
		return RunSequential(ctx, log, steps...)
	}

	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return RunSequential(ctx, log, steps...)
		}
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, s := range steps {
			if err := s.Apply(sc); err != nil {
				return nil, fmt.Errorf("%s: %w", s.Name, err)
			}
		}
		return nil, nil
	})
	if err != nil && IsNotSupported(err) {
		if log != nil {
			log.Debug("transactions unavailable, running steps sequentially", zap.Error(err))
		}
		return RunSequential(ctx, log, steps...)
	}
	return err
}

// RunSequential applies steps in order. When a step fails, every step that
// already succeeded is reverted, last first, and the original error is
// returned. Revert failures are logged; they leave the documents
// inconsistent and need manual repair.
func RunSequential(ctx context.Context, log *zap.Logger, steps ...Step) error {
	for i, s := range steps {
		if err := s.Apply(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				prev := steps[j]
				if prev.Revert == nil {
					continue
				}
				if rerr := prev.Revert(ctx); rerr != nil && log != nil {
					log.Error("compensating revert failed",
						zap.String("step", prev.Name),
						zap.String("failed_step", s.Name),
						zap.Error(rerr))
				}
			}
			return fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return nil
}

// IsNotSupported reports whether err means the server cannot run
// multi-document transactions (standalone mongod, some emulators).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // returned by standalone servers for transaction commands
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }

	switch {
	case has("illegal operation"):
		return true
	case has("transaction") && (has("replica set") || has("session")):
		return true
	case has("session") && has("not supported"):
		return true
	}
	return false
}
