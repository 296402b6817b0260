package transform_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/filmsync/internal/etl/model"
	"github.com/taibuivan/filmsync/internal/etl/transform"
)

func role(r model.Role) *model.Role { return &r }
func str(s string) *string          { return &s }
func f64(f float64) *float64        { return &f }

func TestReformat_FilmWithNoLinks(t *testing.T) {
	filmID := uuid.New()

	rows := []model.JoinRow{
		{FilmID: filmID, Title: "Solo"},
	}

	docs := transform.Reformat(rows)

	require.Contains(t, docs, filmID)
	doc := docs[filmID]
	assert.Equal(t, "Solo", doc.Title)
	assert.Empty(t, doc.Genre)
	assert.Empty(t, doc.Director)
	assert.Empty(t, doc.Actors)
	assert.Empty(t, doc.Writers)
	assert.Empty(t, doc.ActorsNames)
	assert.Empty(t, doc.WritersNames)
	assert.Nil(t, doc.ImdbRating)
	assert.Nil(t, doc.Description)
}

func TestReformat_ActorAndGenresDeduped(t *testing.T) {
	filmID := uuid.New()
	actorID := uuid.New()

	rows := []model.JoinRow{
		{FilmID: filmID, Title: "Ensemble", Rating: f64(7.5), Genre: str("drama"), Role: role(model.RoleActor), PersonID: &actorID, FullName: str("Ada")},
		{FilmID: filmID, Title: "Ensemble", Rating: f64(7.5), Genre: str("sci-fi"), Role: role(model.RoleActor), PersonID: &actorID, FullName: str("Ada")},
	}

	docs := transform.Reformat(rows)
	doc := docs[filmID]

	assert.ElementsMatch(t, []string{"drama", "sci-fi"}, doc.Genre)
	require.Len(t, doc.Actors, 1)
	assert.Equal(t, "Ada", doc.Actors[0].Name)
	assert.Equal(t, []string{"Ada"}, doc.ActorsNames)
	assert.Empty(t, doc.Director)
}

func TestReformat_ActorsNamesMatchesActorsOrder(t *testing.T) {
	filmID := uuid.New()
	a1, a2 := uuid.New(), uuid.New()

	rows := []model.JoinRow{
		{FilmID: filmID, Title: "Cast", Role: role(model.RoleActor), PersonID: &a1, FullName: str("Bea")},
		{FilmID: filmID, Title: "Cast", Role: role(model.RoleActor), PersonID: &a2, FullName: str("Ada")},
	}

	docs := transform.Reformat(rows)
	doc := docs[filmID]

	require.Len(t, doc.Actors, 2)
	for i, actor := range doc.Actors {
		assert.Equal(t, actor.Name, doc.ActorsNames[i])
	}
}

func TestReformat_UnknownRoleIgnored(t *testing.T) {
	filmID := uuid.New()
	personID := uuid.New()
	unknown := model.Role("producer")

	rows := []model.JoinRow{
		{FilmID: filmID, Title: "Mystery", Role: &unknown, PersonID: &personID, FullName: str("Mx. Nobody")},
	}

	docs := transform.Reformat(rows)
	doc := docs[filmID]

	assert.Equal(t, "Mystery", doc.Title)
	assert.Empty(t, doc.Actors)
	assert.Empty(t, doc.Writers)
	assert.Empty(t, doc.Director)
}

func TestReformat_DirectorHasNoID(t *testing.T) {
	filmID := uuid.New()
	personID := uuid.New()

	rows := []model.JoinRow{
		{FilmID: filmID, Title: "Auteur", Role: role(model.RoleDirector), PersonID: &personID, FullName: str("Deng Hui")},
	}

	docs := transform.Reformat(rows)
	doc := docs[filmID]

	assert.Equal(t, []string{"Deng Hui"}, doc.Director)
}
