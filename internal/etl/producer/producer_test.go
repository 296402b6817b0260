package producer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/filmsync/internal/platform/sqlexec"
)

// toChangedRefs consumes rows exactly as the registered uuid codec
// decodes them (see internal/platform/postgres.NewPool's AfterConnect):
// a uuid column comes back as uuid.UUID, never [16]byte. A regression
// here previously went undetected because nothing exercised this
// boundary directly.
func TestToChangedRefs_DecodesUUIDColumn(t *testing.T) {
	id := uuid.New()
	modified := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	refs, err := toChangedRefs([]sqlexec.Row{
		{"id": id, "modified": modified},
	}, "modified")

	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, id, refs[0].ID)
	assert.Equal(t, modified, refs[0].Modified)
}

func TestToChangedRefs_RejectsWrongIDType(t *testing.T) {
	_, err := toChangedRefs([]sqlexec.Row{
		{"id": [16]byte{1}, "modified": time.Now()},
	}, "modified")

	assert.Error(t, err)
}

func TestToChangedRefs_EmptyInput(t *testing.T) {
	refs, err := toChangedRefs(nil, "modified")
	require.NoError(t, err)
	assert.Empty(t, refs)
}
