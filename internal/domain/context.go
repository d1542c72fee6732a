package domain

import "context"

// Action represents a single executable operation with rollback capability.
// Implementations should be idempotent where possible to support safe retries.
//
// Action is defined in the domain layer so that application services can
// stage side effects (image uploads, document writes) without the domain
// depending on the unit of work that executes them.
type Action interface {
	// Execute performs the action. The context carries cancellation and
	// deadline signals that the implementation should respect.
	Execute(ctx context.Context) error

	// Rollback reverses the effect of a previously successful Execute call.
	// Rollback is only called if Execute returned nil.
	Rollback(ctx context.Context) error

	// Description returns a human-readable description for logging
	// (e.g., "upload image blog_images/cover").
	Description() string
}

// ActionFunc adapts a pair of functions into an Action. A nil rollback is a
// no-op.
type ActionFunc struct {
	Name   string
	Run    func(ctx context.Context) error
	Revert func(ctx context.Context) error
}

// Execute calls Run.
func (a ActionFunc) Execute(ctx context.Context) error { return a.Run(ctx) }

// Rollback calls Revert when set.
func (a ActionFunc) Rollback(ctx context.Context) error {
	if a.Revert == nil {
		return nil
	}
	return a.Revert(ctx)
}

// Description returns Name.
func (a ActionFunc) Description() string { return a.Name }
