/*
Package merger implements the third pipeline stage: given the enricher's
two link lists, union the film-ids and perform a single wide join across
film, person_film/person, and genre_film/genre to pull every row needed
to materialize each film document.
*/
package merger

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

const stageName = "Merger"

const methodGetFilmsLinked = "get_films_linked"

// Stage performs the wide join pulling every (film x person x genre) row.
type Stage struct {
	runner *checkpoint.Runner[model.JoinRow]
}

// New builds the Merger stage from the enricher's two link lists. The
// current watermark only seeds the runner's MaxModifiedAfter; it is not
// injected into the SQL.
func New(store *statestore.Store, exec *sqlexec.Executor, personLinks, genreLinks []model.ChangedRef, modifiedAfter time.Time) *Stage {
	filmIDs := unionFilmIDs(personLinks, genreLinks)

	s := &Stage{}
	s.runner = checkpoint.NewRunner(store, stageName, modifiedAfter,
		checkpoint.Method[model.JoinRow]{Name: methodGetFilmsLinked, Run: wideJoin(exec, filmIDs)},
	)
	return s
}

// Collect runs the checkpointed collect() protocol for this stage.
func (s *Stage) Collect(ctx context.Context) error {
	return s.runner.Collect(ctx)
}

// HasResults reports whether the wide join returned rows.
func (s *Stage) HasResults() bool { return s.runner.HasResults }

// MaxModifiedAfter is the greatest modified timestamp observed this run.
func (s *Stage) MaxModifiedAfter() time.Time { return s.runner.MaxModifiedAfter }

// FilmsLinked is the raw wide-join row set, ready for the transformer.
func (s *Stage) FilmsLinked() []model.JoinRow { return s.runner.Results[methodGetFilmsLinked] }

func unionFilmIDs(personLinks, genreLinks []model.ChangedRef) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(personLinks)+len(genreLinks))
	for _, ref := range personLinks {
		seen[ref.ID] = struct{}{}
	}
	for _, ref := range genreLinks {
		seen[ref.ID] = struct{}{}
	}

	out := make([]uuid.UUID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

func wideJoin(exec *sqlexec.Executor, filmIDs []uuid.UUID) func(context.Context) ([]model.JoinRow, error) {
	return func(ctx context.Context) ([]model.JoinRow, error) {
		if len(filmIDs) == 0 {
			return nil, nil
		}

		query := fmt.Sprintf(`
			SELECT
				fw.%s AS fw_id, fw.%s, fw.%s, fw.%s, fw.%s,
				fw.%s, fw.%s,
				pfw.%s, p.%s, p.%s,
				g.%s
			FROM %s fw
			LEFT JOIN %s pfw ON pfw.%s = fw.%s
			LEFT JOIN %s p ON p.%s = pfw.%s
			LEFT JOIN %s gfw ON gfw.%s = fw.%s
			LEFT JOIN %s g ON g.%s = gfw.%s
			WHERE fw.%s = ANY($1::uuid[])`,
			schema.ContentFilm.ID, schema.ContentFilm.Title, schema.ContentFilm.Description,
			schema.ContentFilm.Rating, schema.ContentFilm.Type,
			schema.ContentFilm.Created, schema.ContentFilm.Modified,
			schema.ContentPersonFilm.Role, schema.ContentPerson.ID, schema.ContentPerson.FullName,
			schema.ContentGenre.Name,
			schema.ContentFilm.Table,
			schema.ContentPersonFilm.Table, schema.ContentPersonFilm.FilmID, schema.ContentFilm.ID,
			schema.ContentPerson.Table, schema.ContentPerson.ID, schema.ContentPersonFilm.PersonID,
			schema.ContentGenreFilm.Table, schema.ContentGenreFilm.FilmID, schema.ContentFilm.ID,
			schema.ContentGenre.Table, schema.ContentGenre.ID, schema.ContentGenreFilm.GenreID,
			schema.ContentFilm.ID,
		)

		rows, err := exec.Query(ctx, query, filmIDs)
		if err != nil {
			return nil, fmt.Errorf("merger: wide join: %w", err)
		}
		return toJoinRows(rows)
	}
}

func toJoinRows(rows []sqlexec.Row) ([]model.JoinRow, error) {
	out := make([]model.JoinRow, 0, len(rows))
	for _, row := range rows {
		filmID, ok := row["fw_id"].(uuid.UUID)
		if !ok {
			return nil, fmt.Errorf("merger: row missing uuid fw_id")
		}
		title, _ := row[schema.ContentFilm.Title].(string)
		created, _ := row[schema.ContentFilm.Created].(time.Time)
		modified, _ := row[schema.ContentFilm.Modified].(time.Time)
		filmType, _ := row[schema.ContentFilm.Type].(string)

		join := model.JoinRow{
			FilmID:      filmID,
			Title:       title,
			Description: asStringPtr(row[schema.ContentFilm.Description]),
			Rating:      asFloat64Ptr(row[schema.ContentFilm.Rating]),
			Type:        filmType,
			Created:     created,
			Modified:    modified,
			PersonID:    asUUIDPtr(row[schema.ContentPerson.ID]),
			FullName:    asStringPtr(row[schema.ContentPerson.FullName]),
			Genre:       asStringPtr(row[schema.ContentGenre.Name]),
		}
		if role := asStringPtr(row[schema.ContentPersonFilm.Role]); role != nil {
			r := model.Role(*role)
			join.Role = &r
		}
		out = append(out, join)
	}
	return out, nil
}

func asStringPtr(v any) *string {
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func asFloat64Ptr(v any) *float64 {
	if v == nil {
		return nil
	}
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}

func asUUIDPtr(v any) *uuid.UUID {
	if v == nil {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}
