package schema

// ContentFilmTable represents the 'content.film' table.
type ContentFilmTable struct {
	Table        string
	ID           string
	Title        string
	Description  string
	Rating       string
	Type         string
	CreationDate string
	Created      string
	Modified     string
}

// ContentFilm is the schema definition for content.film.
var ContentFilm = ContentFilmTable{
	Table:        "content.film",
	ID:           "id",
	Title:        "title",
	Description:  "description",
	Rating:       "rating",
	Type:         "type",
	CreationDate: "creation_date",
	Created:      "created",
	Modified:     "modified",
}

func (t ContentFilmTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Description, t.Rating, t.Type,
		t.CreationDate, t.Created, t.Modified,
	}
}
