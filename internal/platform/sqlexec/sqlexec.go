/*
Package sqlexec wraps a pgxpool.Pool with the backoff-retry policy every
catalog query runs under: on any error the query is retried with delay
min(start × factor^(n-1), ceiling), unbounded, so a transient network
drop or a Postgres restart never aborts a run — it only slows it down.

pgxpool already multiplexes physical connections and evicts broken ones
on error, so "discard the connection and reconnect" from the original
single-connection design falls out of simply retrying the query: pool
acquisition on the next attempt transparently hands back a healthy
connection.
*/
package sqlexec

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/taibuivan/filmsync/internal/platform/constants"
)

// Row is one result row, column name to decoded value.
type Row map[string]any

// Executor runs queries against the catalog with automatic retry.
type Executor struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// New wraps pool in an [Executor].
func New(pool *pgxpool.Pool, log *slog.Logger) *Executor {
	return &Executor{pool: pool, log: log}
}

// Query runs sql, retrying under the backoff policy until it succeeds or
// ctx is cancelled. args are passed through to pgx as positional
// parameters — callers should prefer this over string-building literals
// into the query text.
func (e *Executor) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	attempt := 1
	for {
		rows, err := e.queryOnce(ctx, sql, args...)
		if err == nil {
			return rows, nil
		}

		e.log.ErrorContext(ctx, "catalog query failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)

		if waitErr := e.wait(ctx, attempt); waitErr != nil {
			return nil, waitErr
		}
		attempt++
	}
}

func (e *Executor) queryOnce(ctx context.Context, sql string, args ...any) ([]Row, error) {
	rows, err := e.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlexec: query: %w", err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("sqlexec: scan: %w", err)
	}
	return result, nil
}

// scanRows decodes every row into a column-name-keyed map, using the
// field descriptions off the wire rather than a generic row-to-struct
// mapper, since the result shape varies per caller.
func scanRows(rows pgx.Rows) ([]Row, error) {
	fields := rows.FieldDescriptions()
	var result []Row

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(Row, len(fields))
		for i, field := range fields {
			row[string(field.Name)] = values[i]
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// wait blocks for the n'th attempt's backoff delay, or returns ctx's
// error if it is cancelled first. The limiter's single burst token is
// drained immediately so Wait is forced to sleep out the full delay
// rather than letting the first attempt through for free.
func (e *Executor) wait(ctx context.Context, attempt int) error {
	delay := backoffDelay(attempt)

	limiter := rate.NewLimiter(rate.Every(delay), 1)
	limiter.Allow() // drain the initial burst token

	return limiter.Wait(ctx)
}

// backoffDelay computes min(start × factor^(n-1), ceiling) for attempt n.
func backoffDelay(attempt int) time.Duration {
	delay := constants.BackoffStart
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= constants.BackoffCeiling {
			return constants.BackoffCeiling
		}
	}
	if delay > constants.BackoffCeiling {
		delay = constants.BackoffCeiling
	}
	return delay
}
