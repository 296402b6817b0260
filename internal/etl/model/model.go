/*
Package model defines the pipeline's working entities: the minimal
change-reference tuple produced by the producer and enricher stages, the
wide join row produced by the merger, and the denormalized document the
transformer assembles for the index loader.
*/
package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of person-to-film relationships the catalog
// models. It is kept as a dedicated type rather than a bare string
// because the transformer's role dispatch depends on it being closed.
type Role string

const (
	RoleActor    Role = "actor"
	RoleWriter   Role = "writer"
	RoleDirector Role = "director"
)

// ChangedRef is the minimal tuple emitted by the producer and enricher:
// an entity id paired with the timestamp it last changed.
type ChangedRef struct {
	ID       uuid.UUID `json:"id"`
	Modified time.Time `json:"modified"`
}

// ModifiedAt satisfies checkpoint.Record.
func (c ChangedRef) ModifiedAt() time.Time { return c.Modified }

// JoinRow is one row of the merger's wide join across film, person, and
// genre. Every field after Role may be absent because the join is
// left-outer: a film with no persons or no genres still produces a row
// with those fields empty.
type JoinRow struct {
	FilmID      uuid.UUID `json:"fw_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Rating      *float64  `json:"rating"`
	Type        string    `json:"type"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`

	Role     *Role      `json:"role"`
	PersonID *uuid.UUID `json:"person_id"`
	FullName *string    `json:"full_name"`
	Genre    *string    `json:"genre_name"`
}

// ModifiedAt satisfies checkpoint.Record.
func (j JoinRow) ModifiedAt() time.Time { return j.Modified }

// NamedPerson is a person reference that survives into the index
// document: an actor or writer credited on a film.
type NamedPerson struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// FilmDoc is the denormalized document written to the search index, one
// per film id.
type FilmDoc struct {
	ID          uuid.UUID `json:"id"`
	ImdbRating  *float64  `json:"imdb_rating"`
	Genre       []string  `json:"genre"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`

	Director []string `json:"director"`

	ActorsNames  []string `json:"actors_names"`
	WritersNames []string `json:"writers_names"`

	Actors  []NamedPerson `json:"actors"`
	Writers []NamedPerson `json:"writers"`
}
