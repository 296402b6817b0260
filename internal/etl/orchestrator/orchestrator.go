/*
Package orchestrator sequences Producer -> Enricher -> Merger ->
Transformer -> Loader in nested paged loops, advances the watermark, and
manages the global run interlock described by the checkpointing design.
*/
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/filmsync/internal/etl/enricher"
	"github.com/taibuivan/filmsync/internal/etl/indexloader"
	"github.com/taibuivan/filmsync/internal/etl/merger"
	"github.com/taibuivan/filmsync/internal/etl/producer"
	"github.com/taibuivan/filmsync/internal/etl/transform"
	"github.com/taibuivan/filmsync/internal/platform/constants"
	"github.com/taibuivan/filmsync/internal/platform/runlock"
	"github.com/taibuivan/filmsync/internal/platform/sqlexec"
	"github.com/taibuivan/filmsync/internal/platform/statestore"
)

// epoch is the fallback watermark when no prior run has completed.
var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// ErrPriorRunInFlight is returned when a previous invocation never
// reached FINISH or ERROR and the single-instance interlock refuses to
// start a new run.
var ErrPriorRunInFlight = errors.New("orchestrator: a previous run is still in flight")

// Stores bundles the four state-store files the stages checkpoint against.
type Stores struct {
	Main     *statestore.Store
	Producer *statestore.Store
	Enricher *statestore.Store
	Merger   *statestore.Store
}

// Orchestrator drives one run of the pipeline.
type Orchestrator struct {
	stores    Stores
	exec      *sqlexec.Executor
	loader    *indexloader.Loader
	lock      *runlock.Lock
	limitSize int
	log       *slog.Logger
}

// New builds an [Orchestrator]. lock may be nil (no-op) when no
// cross-host lease is configured.
func New(stores Stores, exec *sqlexec.Executor, loader *indexloader.Loader, lock *runlock.Lock, limitSize int, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		stores:    stores,
		exec:      exec,
		loader:    loader,
		lock:      lock,
		limitSize: limitSize,
		log:       log,
	}
}

// Run executes one full pass of the outer loop: it refuses to start if
// a prior run is still marked START, otherwise it pages through
// Producer/Enricher/Merger/Transformer/Loader until the catalog yields
// no more changes, then advances the watermark.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.lock.Acquire(ctx); err != nil {
		if errors.Is(err, runlock.ErrHeld) {
			o.log.WarnContext(ctx, "abort: distributed lease held by another host")
			return ErrPriorRunInFlight
		}
		return err
	}
	defer o.lock.Release(ctx)

	globalState, _, err := o.stores.Main.GetString(constants.GlobalStateKey)
	if err != nil {
		return fmt.Errorf("orchestrator: read global state: %w", err)
	}
	if globalState == constants.CacheStateStart {
		o.log.WarnContext(ctx, "abort: previous synchronization process has not completed")
		return ErrPriorRunInFlight
	}

	modifiedAfter, err := o.readWatermark()
	if err != nil {
		return err
	}

	n, err := o.resumeRunNumber(globalState)
	if err != nil {
		return err
	}

	if err := o.stores.Main.Set(constants.GlobalStateKey, constants.CacheStateStart); err != nil {
		return fmt.Errorf("orchestrator: mark run started: %w", err)
	}

	lastMax := modifiedAfter
	haveLastMax := false

	runErr := o.loop(ctx, modifiedAfter, n, &lastMax, &haveLastMax)
	if runErr != nil {
		if setErr := o.stores.Main.Set(constants.GlobalStateKey, constants.CacheStateError); setErr != nil {
			o.log.ErrorContext(ctx, "failed to persist error state", slog.String("error", setErr.Error()))
		}
		return runErr
	}

	if err := o.stores.Main.Set(constants.GlobalStateKey, constants.CacheStateFinish); err != nil {
		return fmt.Errorf("orchestrator: mark run finished: %w", err)
	}
	if haveLastMax {
		if err := o.stores.Main.Set(constants.WatermarkKey, lastMax.Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("orchestrator: advance watermark: %w", err)
		}
	}
	o.log.InfoContext(ctx, "synchronization completed")
	return nil
}

func (o *Orchestrator) readWatermark() (time.Time, error) {
	raw, ok, err := o.stores.Main.GetString(constants.WatermarkKey)
	if err != nil {
		return time.Time{}, fmt.Errorf("orchestrator: read watermark: %w", err)
	}
	if !ok || raw == "" {
		return epoch, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("orchestrator: parse watermark %q: %w", raw, err)
	}
	return parsed, nil
}

func (o *Orchestrator) resumeRunNumber(globalState string) (int, error) {
	if globalState != constants.CacheStateError {
		return 1, nil
	}
	var n int
	if _, err := o.stores.Main.Get(constants.GlobalNRunKey, &n); err != nil {
		return 0, fmt.Errorf("orchestrator: read resume run number: %w", err)
	}
	if n < 1 {
		n = 1
	}
	return n, nil
}

// loop runs the outer N-page / inner n2-page nested paging described in
// the component design, updating lastMax as it goes.
func (o *Orchestrator) loop(ctx context.Context, modifiedAfter time.Time, n int, lastMax *time.Time, haveLastMax *bool) error {
	for {
		runLog := o.log.With(slog.Int("run", n), slog.Time("modified_after", modifiedAfter))

		if err := o.stores.Main.Set(constants.GlobalStateKey, constants.CacheStateStart); err != nil {
			return fmt.Errorf("orchestrator: mark run %d started: %w", n, err)
		}
		if err := o.stores.Main.Set(constants.GlobalNRunKey, n); err != nil {
			return fmt.Errorf("orchestrator: persist run number %d: %w", n, err)
		}
		runLog.InfoContext(ctx, "run started", slog.String("stage", "producer"))

		p := producer.New(o.stores.Producer, o.exec, modifiedAfter, o.limitSize, n)
		if err := p.Collect(ctx); err != nil {
			return fmt.Errorf("orchestrator: producer run %d: %w", n, err)
		}

		if !p.HasResults() {
			runLog.InfoContext(ctx, "no changes since watermark")
			return nil
		}
		advance(lastMax, haveLastMax, p.MaxModifiedAfter())

		if err := o.innerLoop(ctx, runLog, p, modifiedAfter, lastMax, haveLastMax); err != nil {
			return err
		}

		n++
	}
}

func (o *Orchestrator) innerLoop(ctx context.Context, runLog *slog.Logger, p *producer.Stage, modifiedAfter time.Time, lastMax *time.Time, haveLastMax *bool) error {
	personIDs := p.PersonIDs()
	genreIDs := p.GenreIDs()

	for n2 := 1; ; n2++ {
		pageLog := runLog.With(slog.Int("page", n2))

		e := enricher.New(o.stores.Enricher, o.exec, personIDs, genreIDs, modifiedAfter, o.limitSize, n2)
		if err := e.Collect(ctx); err != nil {
			return fmt.Errorf("orchestrator: enricher page %d: %w", n2, err)
		}

		if !e.HasResults() {
			advance(lastMax, haveLastMax, e.MaxModifiedAfter())
			return nil
		}

		m := merger.New(o.stores.Merger, o.exec, e.PersonLinks(), e.GenreLinks(), modifiedAfter)
		if err := m.Collect(ctx); err != nil {
			return fmt.Errorf("orchestrator: merger page %d: %w", n2, err)
		}
		advance(lastMax, haveLastMax, m.MaxModifiedAfter())

		docs := transform.Reformat(m.FilmsLinked())
		pageLog.InfoContext(ctx, "documents transformed", slog.Int("count", len(docs)))
		if err := o.loader.LoadIt(ctx, docs); err != nil {
			return fmt.Errorf("orchestrator: index load page %d: %w", n2, err)
		}
	}
}

func advance(lastMax *time.Time, haveLastMax *bool, candidate time.Time) {
	if !*haveLastMax || candidate.After(*lastMax) {
		*lastMax = candidate
		*haveLastMax = true
	}
}
