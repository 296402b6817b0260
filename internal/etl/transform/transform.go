/*
Package transform reshapes the merger's wide-join row output into one
denormalized document per film id.

The join is a cross-product of persons x genres per film — a film with
3 actors and 2 genres arrives as 6 rows, most of the fields repeated.
Reformat collapses this in two passes: first grouping by film id into
sets (to dedupe the fan-out), then materializing those sets into the
ordered lists the index schema expects.
*/
package transform

import (
	"sort"

	"github.com/google/uuid"

	"github.com/taibuivan/filmsync/internal/etl/model"
)

// actorWriterKey dedupes actor/writer credits by (person id, name) pair,
// collapsing duplicate join rows caused by the person x genre cross-product.
type actorWriterKey struct {
	id   uuid.UUID
	name string
}

type draft struct {
	title       string
	description *string
	imdbRating  *float64
	genre       map[string]struct{}
	director    map[string]struct{}
	actors      map[actorWriterKey]struct{}
	writers     map[actorWriterKey]struct{}
}

func newDraft() *draft {
	return &draft{
		genre:    make(map[string]struct{}),
		director: make(map[string]struct{}),
		actors:   make(map[actorWriterKey]struct{}),
		writers:  make(map[actorWriterKey]struct{}),
	}
}

// Reformat groups rows by film id and produces one [model.FilmDoc] per
// id, keyed the same way.
func Reformat(rows []model.JoinRow) map[uuid.UUID]model.FilmDoc {
	drafts := make(map[uuid.UUID]*draft)

	// Pass 1: group by film id, updating constant fields and role sets.
	for _, row := range rows {
		d, ok := drafts[row.FilmID]
		if !ok {
			d = newDraft()
			drafts[row.FilmID] = d
		}

		d.title = row.Title
		d.description = row.Description
		d.imdbRating = row.Rating

		if row.Genre != nil {
			d.genre[*row.Genre] = struct{}{}
		}

		if row.Role == nil {
			continue
		}
		switch *row.Role {
		case model.RoleDirector:
			if row.FullName != nil {
				d.director[*row.FullName] = struct{}{}
			}
		case model.RoleActor:
			if row.PersonID != nil && row.FullName != nil {
				d.actors[actorWriterKey{id: *row.PersonID, name: *row.FullName}] = struct{}{}
			}
		case model.RoleWriter:
			if row.PersonID != nil && row.FullName != nil {
				d.writers[actorWriterKey{id: *row.PersonID, name: *row.FullName}] = struct{}{}
			}
		}
		// Unknown roles are ignored; the film still materializes via its
		// constant fields.
	}

	// Pass 2: materialize sets into ordered lists.
	out := make(map[uuid.UUID]model.FilmDoc, len(drafts))
	for filmID, d := range drafts {
		actors := namedPeople(d.actors)
		writers := namedPeople(d.writers)

		out[filmID] = model.FilmDoc{
			ID:           filmID,
			ImdbRating:   d.imdbRating,
			Genre:        sortedKeys(d.genre),
			Title:        d.title,
			Description:  d.description,
			Director:     sortedKeys(d.director),
			ActorsNames:  names(actors),
			WritersNames: names(writers),
			Actors:       actors,
			Writers:      writers,
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func namedPeople(set map[actorWriterKey]struct{}) []model.NamedPerson {
	out := make([]model.NamedPerson, 0, len(set))
	for k := range set {
		out = append(out, model.NamedPerson{ID: k.id, Name: k.name})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func names(people []model.NamedPerson) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.Name
	}
	return out
}
