// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port
// interfaces. Services never talk to the database or the media host
// directly; the store is reached through repositories that obtain their
// connection from the connection supervisor.
package app

import "log/slog"

func orDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
