package importer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"catalog-service/internal/models"
)

// CatalogResolver maps human-entered catalog names to catalog ids.
// The name map is a snapshot of leaf-level catalogs loaded once per job,
// so resolution is an O(1) map lookup per row rather than a query.
type CatalogResolver struct {
	byName map[string]uuid.UUID
}

// NewCatalogResolver constructs a resolver over a name->id map. Keys are
// lowercased so matching is case-insensitive.
func NewCatalogResolver(names map[string]uuid.UUID) *CatalogResolver {
	byName := make(map[string]uuid.UUID, len(names))
	for name, id := range names {
		byName[strings.ToLower(name)] = id
	}
	return &CatalogResolver{byName: byName}
}

// Resolve returns the catalog id for a name. An empty name is valid and
// leaves the product uncategorized; a non-empty name with no match is a
// hard row error, never a silent null.
func (r *CatalogResolver) Resolve(name string, rowNum int) (*uuid.UUID, *models.ImportRowError) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, nil
	}
	if id, ok := r.byName[strings.ToLower(trimmed)]; ok {
		return &id, nil
	}
	return nil, &models.ImportRowError{
		Row:     rowNum,
		Field:   ColCatalogName,
		Code:    CodeCatalogNotFound,
		Message: fmt.Sprintf("Catalog '%s' not found", trimmed),
	}
}
