package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckAndRegister_FreeSlug(t *testing.T) {
	d := NewDuplicateDetector(nil)

	assert.Nil(t, d.CheckAndRegister("walnut-table", 2))
	assert.Nil(t, d.CheckAndRegister("oak-table", 3))
}

func TestCheckAndRegister_PersistedSlug(t *testing.T) {
	d := NewDuplicateDetector(map[string]struct{}{"walnut-table": {}})

	err := d.CheckAndRegister("walnut-table", 4)

	require.NotNil(t, err)
	assert.Equal(t, 4, err.Row)
	assert.Equal(t, ColSlug, err.Field)
	assert.Equal(t, CodeSlugExists, err.Code)
	assert.Contains(t, err.Message, "already exists")
}

func TestCheckAndRegister_DuplicateWithinFile(t *testing.T) {
	d := NewDuplicateDetector(nil)

	require.Nil(t, d.CheckAndRegister("walnut-table", 2))
	err := d.CheckAndRegister("walnut-table", 5)

	require.NotNil(t, err)
	assert.Equal(t, 5, err.Row)
	assert.Equal(t, CodeDuplicateInFile, err.Code)
	assert.Contains(t, err.Message, "in import file")
}

// A slug that is both persisted and already claimed in the batch reports
// the in-file duplicate, since that check runs first.
func TestCheckAndRegister_InFileCheckedBeforePersisted(t *testing.T) {
	d := NewDuplicateDetector(map[string]struct{}{"oak-table": {}})

	first := d.CheckAndRegister("oak-table", 2)
	require.NotNil(t, first)
	assert.Equal(t, CodeSlugExists, first.Code)

	// A rejected row never claims the slug, so the next occurrence is
	// still measured against the database, not the batch.
	second := d.CheckAndRegister("oak-table", 3)
	require.NotNil(t, second)
	assert.Equal(t, CodeSlugExists, second.Code)
}

func TestCheckAndRegister_RejectedRowDoesNotClaim(t *testing.T) {
	d := NewDuplicateDetector(map[string]struct{}{"taken": {}})

	require.NotNil(t, d.CheckAndRegister("taken", 2))
	assert.Nil(t, d.CheckAndRegister("free", 3))
	require.NotNil(t, d.CheckAndRegister("free", 4))
	assert.Equal(t, CodeDuplicateInFile, d.CheckAndRegister("free", 5).Code)
}
