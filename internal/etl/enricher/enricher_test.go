package enricher

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/filmsync/internal/platform/database/schema"
	"github.com/taibuivan/filmsync/internal/platform/sqlexec"
)

// toChangedRefs consumes rows exactly as the registered uuid codec
// decodes them: a uuid column comes back as uuid.UUID, never [16]byte.
func TestToChangedRefs_DecodesUUIDColumn(t *testing.T) {
	id := uuid.New()
	modified := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	refs, err := toChangedRefs([]sqlexec.Row{
		{"id": id, schema.ContentFilm.Modified: modified},
	})

	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, id, refs[0].ID)
	assert.Equal(t, modified, refs[0].Modified)
}

func TestToChangedRefs_RejectsWrongIDType(t *testing.T) {
	_, err := toChangedRefs([]sqlexec.Row{
		{"id": [16]byte{1}, schema.ContentFilm.Modified: time.Now()},
	})

	assert.Error(t, err)
}

func TestLinkedFilms_EmptyIDsSkipsQuery(t *testing.T) {
	run := linkedFilms(nil, nil, schema.ContentPersonFilm.Table, schema.ContentPersonFilm.PersonID, 10, 0)

	refs, err := run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, refs)
}
