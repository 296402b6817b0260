/*
Package checkpoint implements the crash-safe collect() protocol shared by
the producer, enricher, and merger stages: each stage is an ordered list
of named, paged sub-methods, and each sub-method's phase and result are
persisted before and after it runs so that a crash mid-stage resumes
exactly at the sub-method that was in flight, without re-querying the
ones that already finished.
*/
package checkpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/filmsync/internal/platform/constants"
	"github.com/taibuivan/filmsync/internal/platform/statestore"
)

// Record is satisfied by any pipeline working entity that carries a
// modification timestamp, so [Runner] can compute max_modified_after
// generically across ChangedRef and JoinRow.
type Record interface {
	ModifiedAt() time.Time
}

// Method is one named, checkpointed sub-operation of a stage.
type Method[T Record] struct {
	// Name identifies the sub-method; it is the second component of the
	// state-store keys "<Stage>.<Name>" and "<Stage>.<Name>.result".
	Name string
	// Run executes the sub-method against the catalog.
	Run func(ctx context.Context) ([]T, error)
}

// Runner drives the collect() protocol for one stage instance.
//
// A new Runner must be constructed for every run of a stage — it is not
// safe to reuse across runs because ModifiedAfter/HasResults/Results are
// per-run state.
type Runner[T Record] struct {
	store     *statestore.Store
	stageName string
	methods   []Method[T]

	// ModifiedAfter is the watermark the runner was built with; it seeds
	// MaxModifiedAfter and is not changed afterwards.
	ModifiedAfter time.Time

	// MaxModifiedAfter is the greatest modified timestamp observed across
	// every sub-method's result so far in this run.
	MaxModifiedAfter time.Time

	// HasResults is true iff any sub-method returned a non-empty result.
	HasResults bool

	// Results holds each sub-method's result, keyed by Method.Name.
	Results map[string][]T
}

// NewRunner constructs a [Runner] for stageName against store, seeded
// with modifiedAfter as the initial watermark.
func NewRunner[T Record](store *statestore.Store, stageName string, modifiedAfter time.Time, methods ...Method[T]) *Runner[T] {
	return &Runner[T]{
		store:            store,
		stageName:        stageName,
		methods:          methods,
		ModifiedAfter:    modifiedAfter,
		MaxModifiedAfter: modifiedAfter,
		Results:          make(map[string][]T, len(methods)),
	}
}

// Collect runs the protocol described in the checkpointing design: it
// detects whether the previous invocation of this stage crashed
// mid-flight, replays finished sub-methods from their cached result, and
// re-executes only the one sub-method that was interrupted (plus every
// sub-method after it).
func (r *Runner[T]) Collect(ctx context.Context) error {
	stageKey := r.stageName

	globalState, found, err := r.store.GetString(stageKey)
	if err != nil {
		return fmt.Errorf("checkpoint: read stage state %q: %w", stageKey, err)
	}
	isBroken := found && globalState == constants.CacheStateStart

	if err := r.store.Set(stageKey, constants.CacheStateStart); err != nil {
		return fmt.Errorf("checkpoint: mark stage %q started: %w", stageKey, err)
	}

	foundBroken := false

	for _, method := range r.methods {
		methodKey := stageKey + "." + method.Name

		if !isBroken || foundBroken {
			if err := r.execute(ctx, method, methodKey); err != nil {
				return err
			}
			continue
		}

		methodState, methodStateFound, err := r.store.GetString(methodKey)
		if err != nil {
			return fmt.Errorf("checkpoint: read method state %q: %w", methodKey, err)
		}

		if methodStateFound && methodState == constants.CacheStateStart {
			foundBroken = true
			if err := r.execute(ctx, method, methodKey); err != nil {
				return err
			}
			continue
		}

		// Finished (or never recorded — absent is treated as finished
		// only because every prior method in this branch also finished).
		result, err := r.replay(methodKey)
		if err != nil {
			return err
		}
		r.Results[method.Name] = result
		r.analyzeResult(result)
	}

	if err := r.store.Set(stageKey, constants.CacheStateFinish); err != nil {
		return fmt.Errorf("checkpoint: mark stage %q finished: %w", stageKey, err)
	}
	return nil
}

// execute runs method, persisting START before and FINISH+result after.
func (r *Runner[T]) execute(ctx context.Context, method Method[T], methodKey string) error {
	if err := r.store.Set(methodKey, constants.CacheStateStart); err != nil {
		return fmt.Errorf("checkpoint: mark method %q started: %w", methodKey, err)
	}

	result, err := method.Run(ctx)
	if err != nil {
		return fmt.Errorf("checkpoint: run method %q: %w", methodKey, err)
	}

	if err := r.store.Set(methodKey, constants.CacheStateFinish); err != nil {
		return fmt.Errorf("checkpoint: mark method %q finished: %w", methodKey, err)
	}
	if err := r.store.Set(methodKey+".result", result); err != nil {
		return fmt.Errorf("checkpoint: persist method %q result: %w", methodKey, err)
	}

	r.Results[method.Name] = result
	r.analyzeResult(result)
	return nil
}

// replay loads a previously FINISHed sub-method's cached result.
func (r *Runner[T]) replay(methodKey string) ([]T, error) {
	var result []T
	if _, err := r.store.Get(methodKey+".result", &result); err != nil {
		return nil, fmt.Errorf("checkpoint: replay method %q: %w", methodKey, err)
	}
	return result, nil
}

// analyzeResult updates HasResults and MaxModifiedAfter from one
// sub-method's result. Empty results are explicitly skipped so the max
// is never taken over an empty set.
func (r *Runner[T]) analyzeResult(result []T) {
	if len(result) == 0 {
		return
	}
	r.HasResults = true
	for _, row := range result {
		if m := row.ModifiedAt(); m.After(r.MaxModifiedAfter) {
			r.MaxModifiedAfter = m
		}
	}
}
