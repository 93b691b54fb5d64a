package importer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ExactMatch(t *testing.T) {
	livingRoom := uuid.New()
	r := NewCatalogResolver(map[string]uuid.UUID{"Living Room": livingRoom})

	id, err := r.Resolve("Living Room", 2)

	require.Nil(t, err)
	require.NotNil(t, id)
	assert.Equal(t, livingRoom, *id)
}

func TestResolve_CaseInsensitive(t *testing.T) {
	livingRoom := uuid.New()
	r := NewCatalogResolver(map[string]uuid.UUID{"Living Room": livingRoom})

	for _, name := range []string{"living room", "LIVING ROOM", "LiVinG rOoM"} {
		id, err := r.Resolve(name, 2)
		require.Nilf(t, err, "name %q should resolve", name)
		require.NotNil(t, id)
		assert.Equal(t, livingRoom, *id)
	}
}

func TestResolve_EmptyNameIsUncategorized(t *testing.T) {
	r := NewCatalogResolver(map[string]uuid.UUID{"Living Room": uuid.New()})

	id, err := r.Resolve("", 2)
	assert.Nil(t, err)
	assert.Nil(t, id)

	id, err = r.Resolve("   ", 3)
	assert.Nil(t, err)
	assert.Nil(t, id)
}

func TestResolve_UnknownNameIsRowError(t *testing.T) {
	r := NewCatalogResolver(map[string]uuid.UUID{"Living Room": uuid.New()})

	id, err := r.Resolve("Garage", 6)

	assert.Nil(t, id)
	require.NotNil(t, err)
	assert.Equal(t, 6, err.Row)
	assert.Equal(t, ColCatalogName, err.Field)
	assert.Equal(t, CodeCatalogNotFound, err.Code)
	assert.Contains(t, err.Message, "Garage")
}

func TestResolve_TrimsWhitespace(t *testing.T) {
	livingRoom := uuid.New()
	r := NewCatalogResolver(map[string]uuid.UUID{"Living Room": livingRoom})

	id, err := r.Resolve("  Living Room  ", 2)

	require.Nil(t, err)
	require.NotNil(t, id)
	assert.Equal(t, livingRoom, *id)
}
