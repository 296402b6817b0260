package schema

// ContentPersonFilmTable represents the 'content.person_film' junction table.
type ContentPersonFilmTable struct {
	Table    string
	ID       string
	FilmID   string
	PersonID string
	Role     string
	Created  string
}

// ContentPersonFilm is the schema definition for content.person_film.
var ContentPersonFilm = ContentPersonFilmTable{
	Table:    "content.person_film",
	ID:       "id",
	FilmID:   "film_id",
	PersonID: "person_id",
	Role:     "role",
	Created:  "created",
}

func (t ContentPersonFilmTable) Columns() []string {
	return []string{t.ID, t.FilmID, t.PersonID, t.Role, t.Created}
}

// Role values for content.person_film.role.
const (
	RoleActor    = "actor"
	RoleWriter   = "writer"
	RoleDirector = "director"
)
