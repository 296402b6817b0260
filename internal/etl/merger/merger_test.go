package merger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/filmsync/internal/etl/model"
	"github.com/taibuivan/filmsync/internal/platform/database/schema"
	"github.com/taibuivan/filmsync/internal/platform/sqlexec"
)

// toJoinRows consumes rows exactly as the registered uuid codec decodes
// them: fw_id and person id columns come back as uuid.UUID, never [16]byte.
func TestToJoinRows_DecodesUUIDColumns(t *testing.T) {
	filmID := uuid.New()
	personID := uuid.New()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	modified := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	rows, err := toJoinRows([]sqlexec.Row{
		{
			"fw_id":                        filmID,
			schema.ContentFilm.Title:       "A Film",
			schema.ContentFilm.Created:     created,
			schema.ContentFilm.Modified:    modified,
			schema.ContentFilm.Type:        "movie",
			schema.ContentPerson.ID:        personID,
			schema.ContentPerson.FullName:  "Ann Actor",
			schema.ContentPersonFilm.Role:  "actor",
			schema.ContentGenre.Name:       "Drama",
		},
	})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, filmID, rows[0].FilmID)
	require.NotNil(t, rows[0].PersonID)
	assert.Equal(t, personID, *rows[0].PersonID)
	require.NotNil(t, rows[0].Role)
	assert.Equal(t, "actor", string(*rows[0].Role))
}

func TestToJoinRows_RejectsWrongFilmIDType(t *testing.T) {
	_, err := toJoinRows([]sqlexec.Row{
		{"fw_id": [16]byte{1}},
	})
	assert.Error(t, err)
}

func TestAsUUIDPtr_NilAndWrongTypeAreNil(t *testing.T) {
	assert.Nil(t, asUUIDPtr(nil))
	assert.Nil(t, asUUIDPtr([16]byte{1}))

	id := uuid.New()
	got := asUUIDPtr(id)
	require.NotNil(t, got)
	assert.Equal(t, id, *got)
}

func TestAsStringPtr_NilAndWrongTypeAreNil(t *testing.T) {
	assert.Nil(t, asStringPtr(nil))
	assert.Nil(t, asStringPtr(42))

	got := asStringPtr("hello")
	require.NotNil(t, got)
	assert.Equal(t, "hello", *got)
}

func TestAsFloat64Ptr_NilAndWrongTypeAreNil(t *testing.T) {
	assert.Nil(t, asFloat64Ptr(nil))
	assert.Nil(t, asFloat64Ptr("not a float"))

	got := asFloat64Ptr(7.5)
	require.NotNil(t, got)
	assert.Equal(t, 7.5, *got)
}

func TestUnionFilmIDs_Dedupes(t *testing.T) {
	shared := uuid.New()
	onlyPerson := uuid.New()
	onlyGenre := uuid.New()

	ids := unionFilmIDs(
		[]model.ChangedRef{{ID: shared}, {ID: onlyPerson}},
		[]model.ChangedRef{{ID: shared}, {ID: onlyGenre}},
	)

	assert.ElementsMatch(t, []uuid.UUID{shared, onlyPerson, onlyGenre}, ids)
}
