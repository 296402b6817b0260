package schema

// ContentGenreFilmTable represents the 'content.genre_film' junction table.
type ContentGenreFilmTable struct {
	Table   string
	ID      string
	FilmID  string
	GenreID string
	Created string
}

// ContentGenreFilm is the schema definition for content.genre_film.
var ContentGenreFilm = ContentGenreFilmTable{
	Table:   "content.genre_film",
	ID:      "id",
	FilmID:  "film_id",
	GenreID: "genre_id",
	Created: "created",
}

func (t ContentGenreFilmTable) Columns() []string {
	return []string{t.ID, t.FilmID, t.GenreID, t.Created}
}
