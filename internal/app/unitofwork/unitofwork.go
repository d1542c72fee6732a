// Package unitofwork runs a short sequence of side effects that span the
// document store and the media host, undoing completed steps when a later
// one fails.
//
//	uow := unitofwork.New()
//	uow.Add(uploadImage)  // Rollback deletes the uploaded asset
//	uow.Add(insertPost)
//	if err := uow.Commit(ctx); err != nil { ... }
package unitofwork

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen11/blog-platform-api/internal/domain"
	"github.com/jsamuelsen11/blog-platform-api/internal/platform/logging"
)

// rollbackTimeout bounds the whole rollback sequence.
const rollbackTimeout = 30 * time.Second

var (
	// ErrCommitted is returned by Add and Commit after Commit has run.
	ErrCommitted = errors.New("unitofwork: already committed")

	// ErrNilAction is returned by Add for a nil action.
	ErrNilAction = errors.New("unitofwork: nil action")
)

// Unit is a single-use, single-goroutine sequence of actions.
type Unit struct {
	actions   []domain.Action
	committed bool
}

// New returns an empty Unit.
func New() *Unit {
	return &Unit{}
}

// Add stages action for Commit.
func (u *Unit) Add(action domain.Action) error {
	if action == nil {
		return ErrNilAction
	}
	if u.committed {
		return ErrCommitted
	}
	u.actions = append(u.actions, action)
	return nil
}

// Len returns the number of staged actions.
func (u *Unit) Len() int {
	return len(u.actions)
}

// Commit executes the staged actions in order. When one fails, the ones
// that completed are rolled back in reverse order and the failure is
// returned. Rollback runs on a context detached from ctx, so a caller that
// has gone away still gets its side effects undone. Rollback errors are
// logged only.
func (u *Unit) Commit(ctx context.Context) error {
	if u.committed {
		return ErrCommitted
	}
	u.committed = true

	logger := logging.FromContext(ctx)
	for i, a := range u.actions {
		logger.DebugContext(ctx, "executing action",
			slog.Int("step", i+1),
			slog.Int("total", len(u.actions)),
			slog.String("action", a.Description()),
		)

		if err := a.Execute(ctx); err != nil {
			logger.WarnContext(ctx, "action failed, rolling back",
				slog.Int("failed_step", i+1),
				slog.String("action", a.Description()),
				slog.Any("error", err),
			)
			u.rollback(ctx, i-1, logger)
			return fmt.Errorf("%s: %w", a.Description(), err)
		}
	}
	return nil
}

func (u *Unit) rollback(ctx context.Context, upTo int, logger *slog.Logger) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	for i := upTo; i >= 0; i-- {
		a := u.actions[i]
		if err := a.Rollback(rctx); err != nil {
			logger.ErrorContext(ctx, "rollback failed",
				slog.Int("step", i+1),
				slog.String("action", a.Description()),
				slog.Any("error", err),
			)
		}
	}
}
