/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, backoff tuning, and cross-cutting keys shared
between the pipeline stages.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the health HTTP server.
  - Backoff: start delay, growth factor, and ceiling for the SQL executor.
  - Checkpointing: the three cache-state labels persisted to the state store.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "filmsync"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// ShutdownTimeout is how long we wait for the health server to drain during shutdown.
	ShutdownTimeout = 10 * time.Second

	// QueryStatementTimeout bounds any single SQL statement run by the pipeline.
	QueryStatementTimeout = 30 * time.Second
)

// # Backoff Policy

const (
	// BackoffStart is the delay before the first retry.
	BackoffStart = 100 * time.Millisecond

	// BackoffFactor is the multiplier applied to the delay after every failed attempt.
	BackoffFactor = 2.0

	// BackoffCeiling caps the delay so a flaky connection never stalls a run for long.
	BackoffCeiling = 10 * time.Second
)

// # Checkpoint / Cache States

const (
	// CacheStateStart marks a stage or sub-method as in-flight, not yet finished.
	CacheStateStart = "START"

	// CacheStateFinish marks a stage or sub-method as completed for the current run.
	CacheStateFinish = "FINISH"

	// CacheStateError marks a run as having aborted with an unhandled error.
	CacheStateError = "ERROR"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # HTTP Headers

const (
	// HeaderXRequestID is the header used to propagate a request correlation id.
	HeaderXRequestID = "X-Request-ID"
)

// # Database Schema

const (
	// SchemaContent is the schema owning the film/person/genre catalog.
	SchemaContent = "content"
)

// # State Store Domains

const (
	StateDomainMain     = "main"
	StateDomainProducer = "producer"
	StateDomainEnricher = "enricher"
	StateDomainMerger   = "merger"
)

// # Global State Keys

const (
	// GlobalStateKey is the key under the main state domain guarding the
	// single-process interlock described in the orchestrator.
	GlobalStateKey = "global_state"

	// WatermarkKey is the key under the main state domain holding the
	// last successfully processed modification timestamp.
	WatermarkKey = "modified_after"

	// GlobalNRunKey is the key under the main state domain holding the
	// outer run number to resume at after an ERROR.
	GlobalNRunKey = "global_n_run"
)
