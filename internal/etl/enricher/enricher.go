/*
Package enricher implements the second pipeline stage: given the
person-ids and genre-ids the producer found changed, locate every film
linked to one of them through the person_film/genre_film junction
tables.
*/
package enricher

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

const stageName = "Enricher"

const (
	methodGetPersonLinks = "get_person_links"
	methodGetGenreLinks  = "get_genre_links"
)

// Stage finds films linked to a changed person or genre.
type Stage struct {
	runner *checkpoint.Runner[model.ChangedRef]
}

// New builds the Enricher stage for page n (1-based) of the current
// producer page's person/genre ids.
func New(store *statestore.Store, exec *sqlexec.Executor, personIDs, genreIDs []uuid.UUID, modifiedAfter time.Time, limit, n int) *Stage {
	offset := limit * (n - 1)

	s := &Stage{}
	s.runner = checkpoint.NewRunner(store, stageName, modifiedAfter,
		checkpoint.Method[model.ChangedRef]{Name: methodGetPersonLinks, Run: linkedFilms(exec, personIDs, schema.ContentPersonFilm.Table, schema.ContentPersonFilm.PersonID, limit, offset)},
		checkpoint.Method[model.ChangedRef]{Name: methodGetGenreLinks, Run: linkedFilms(exec, genreIDs, schema.ContentGenreFilm.Table, schema.ContentGenreFilm.GenreID, limit, offset)},
	)
	return s
}

// Collect runs the checkpointed collect() protocol for this stage.
func (s *Stage) Collect(ctx context.Context) error {
	return s.runner.Collect(ctx)
}

// HasResults reports whether either link scan returned rows.
func (s *Stage) HasResults() bool { return s.runner.HasResults }

// MaxModifiedAfter is the greatest modified timestamp observed this run.
func (s *Stage) MaxModifiedAfter() time.Time { return s.runner.MaxModifiedAfter }

// PersonLinks is the films linked through a changed person.
func (s *Stage) PersonLinks() []model.ChangedRef { return s.runner.Results[methodGetPersonLinks] }

// GenreLinks is the films linked through a changed genre.
func (s *Stage) GenreLinks() []model.ChangedRef { return s.runner.Results[methodGetGenreLinks] }

// linkedFilms returns a checkpoint.Method.Run closure joining film
// through junctionTable on filterColumn IN ids. An empty ids short
// circuits to an empty result without touching the catalog, matching
// the "if not self.all_*_uuid: return []" guard in the source design.
func linkedFilms(exec *sqlexec.Executor, ids []uuid.UUID, junctionTable, filterColumn string, limit, offset int) func(context.Context) ([]model.ChangedRef, error) {
	return func(ctx context.Context) ([]model.ChangedRef, error) {
		if len(ids) == 0 {
			return nil, nil
		}

		query := fmt.Sprintf(`
			SELECT fw.id, fw.%s
			FROM %s fw
			LEFT JOIN %s j ON j.film_id = fw.id
			WHERE j.%s = ANY($1::uuid[])
			ORDER BY fw.%s
			LIMIT $2 OFFSET $3`,
			schema.ContentFilm.Modified, schema.ContentFilm.Table, junctionTable,
			filterColumn, schema.ContentFilm.Modified)

		rows, err := exec.Query(ctx, query, ids, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("enricher: scan %s: %w", junctionTable, err)
		}
		return toChangedRefs(rows)
	}
}

func toChangedRefs(rows []sqlexec.Row) ([]model.ChangedRef, error) {
	out := make([]model.ChangedRef, 0, len(rows))
	for _, row := range rows {
		id, ok := row["id"].(uuid.UUID)
		if !ok {
			return nil, fmt.Errorf("enricher: row missing uuid id")
		}
		modified, ok := row[schema.ContentFilm.Modified].(time.Time)
		if !ok {
			return nil, fmt.Errorf("enricher: row missing timestamp %s", schema.ContentFilm.Modified)
		}
		out = append(out, model.ChangedRef{ID: id, Modified: modified})
	}
	return out, nil
}
