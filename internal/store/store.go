// Package store keeps the history of finished retrievals.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/i474232898/openweathermap-client/internal/retrieval"
)

// ErrNotFound is returned when no records match a query.
var ErrNotFound = errors.New("no retrieval records found")

// Store persists retrieval records. Records are kept in the order they were saved.
type Store interface {
	Save(ctx context.Context, rec retrieval.Record) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]retrieval.Record, error)
	// Latest returns the newest record for an endpoint.
	Latest(ctx context.Context, endpoint string) (retrieval.Record, error)
	// Range returns the records for an endpoint started between from and to (inclusive).
	Range(ctx context.Context, endpoint string, from, to time.Time) ([]retrieval.Record, error)
}

func inRange(t, from, to time.Time) bool {
	return (t.Equal(from) || t.After(from)) && (t.Equal(to) || t.Before(to))
}
