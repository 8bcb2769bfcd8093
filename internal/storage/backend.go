// Package storage holds the persistence ports and their SQLite and
// plain-file implementations. A backend stores one snapshot per user
// and hands it back wholesale; merging is the sync coordinator's job.
package storage

import (
	"context"
	"errors"
)

// ErrNoData reports that the user has never saved a snapshot. Callers
// treat it as "start empty", not as a failure.
var ErrNoData = errors.New("storage: no data for user")

type Backend interface {
	Load(ctx context.Context, userID string) (Snapshot, error)
	Save(ctx context.Context, userID string, snap Snapshot) error
}
