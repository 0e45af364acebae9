package gameserver

import (
	"context"

	"github.com/cory-johannsen/cryptdancer/internal/storage/postgres"
)

// Journal records the result of every finished session.
// *postgres.SessionRepository satisfies it.
type Journal interface {
	Record(ctx context.Context, res postgres.Result) error
}

// NopJournal discards results. It is used when the journal is disabled.
type NopJournal struct{}

// Record does nothing.
func (NopJournal) Record(context.Context, postgres.Result) error { return nil }
