/*
Package producer implements the first pipeline stage: three independent
paged scans of content.person, content.genre, and content.film for rows
with modified > watermark.
*/
package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/taibuivan/filmsync/internal/etl/model"
	"github.com/taibuivan/filmsync/internal/platform/checkpoint"
	"github.com/taibuivan/filmsync/internal/platform/database/schema"
	"github.com/taibuivan/filmsync/internal/platform/sqlexec"
	"github.com/taibuivan/filmsync/internal/platform/statestore"
)

const stageName = "Producer"

// Sub-method names, matching the state-store key convention "<Stage>.<Name>".
const (
	methodGetPerson = "get_person"
	methodGetGenre  = "get_genre"
	methodGetFilm   = "get_film"
)

// Stage scans the three source tables for a single run's page.
type Stage struct {
	runner *checkpoint.Runner[model.ChangedRef]
}

// New builds the Producer stage for run number n (1-based), windowing
// offset = limit*(n-1) over each source table.
func New(store *statestore.Store, exec *sqlexec.Executor, modifiedAfter time.Time, limit, n int) *Stage {
	offset := limit * (n - 1)

	s := &Stage{}
	s.runner = checkpoint.NewRunner(store, stageName, modifiedAfter,
		checkpoint.Method[model.ChangedRef]{Name: methodGetPerson, Run: scan(exec, schema.ContentPerson.Table, schema.ContentPerson.Modified, modifiedAfter, limit, offset)},
		checkpoint.Method[model.ChangedRef]{Name: methodGetGenre, Run: scan(exec, schema.ContentGenre.Table, schema.ContentGenre.Modified, modifiedAfter, limit, offset)},
		checkpoint.Method[model.ChangedRef]{Name: methodGetFilm, Run: scan(exec, schema.ContentFilm.Table, schema.ContentFilm.Modified, modifiedAfter, limit, offset)},
	)
	return s
}

// Collect runs the checkpointed collect() protocol for this stage.
func (s *Stage) Collect(ctx context.Context) error {
	return s.runner.Collect(ctx)
}

// HasResults reports whether any of the three scans returned rows.
func (s *Stage) HasResults() bool { return s.runner.HasResults }

// MaxModifiedAfter is the greatest modified timestamp observed this run.
func (s *Stage) MaxModifiedAfter() time.Time { return s.runner.MaxModifiedAfter }

// Persons is the result of the content.person scan.
func (s *Stage) Persons() []model.ChangedRef { return s.runner.Results[methodGetPerson] }

// Genres is the result of the content.genre scan.
func (s *Stage) Genres() []model.ChangedRef { return s.runner.Results[methodGetGenre] }

// Films is the result of the content.film scan.
func (s *Stage) Films() []model.ChangedRef { return s.runner.Results[methodGetFilm] }

// PersonIDs extracts the ids from Persons(), for the enricher.
func (s *Stage) PersonIDs() []uuid.UUID { return ids(s.Persons()) }

// GenreIDs extracts the ids from Genres(), for the enricher.
func (s *Stage) GenreIDs() []uuid.UUID { return ids(s.Genres()) }

func ids(refs []model.ChangedRef) []uuid.UUID {
	out := make([]uuid.UUID, len(refs))
	for i, r := range refs {
		out[i] = r.ID
	}
	return out
}

// scan returns a checkpoint.Method.Run closure paging one source table.
func scan(exec *sqlexec.Executor, table, modifiedColumn string, modifiedAfter time.Time, limit, offset int) func(context.Context) ([]model.ChangedRef, error) {
	return func(ctx context.Context) ([]model.ChangedRef, error) {
		query := fmt.Sprintf(`
			SELECT id, %s
			FROM %s
			WHERE %s > $1
			ORDER BY %s
			LIMIT $2 OFFSET $3`,
			modifiedColumn, table, modifiedColumn, modifiedColumn)

		rows, err := exec.Query(ctx, query, modifiedAfter, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("producer: scan %s: %w", table, err)
		}
		return toChangedRefs(rows, modifiedColumn)
	}
}

func toChangedRefs(rows []sqlexec.Row, modifiedColumn string) ([]model.ChangedRef, error) {
	out := make([]model.ChangedRef, 0, len(rows))
	for _, row := range rows {
		id, ok := row["id"].(uuid.UUID)
		if !ok {
			return nil, fmt.Errorf("producer: row missing uuid id")
		}
		modified, ok := row[modifiedColumn].(time.Time)
		if !ok {
			return nil, fmt.Errorf("producer: row missing timestamp %s", modifiedColumn)
		}
		out = append(out, model.ChangedRef{ID: id, Modified: modified})
	}
	return out, nil
}
