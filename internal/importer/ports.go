package importer

import (
	"context"

	"github.com/google/uuid"

	"catalog-service/internal/models"
)

// JobStore persists import job records.
type JobStore interface {
	Create(ctx context.Context, job *models.ImportJob) error
	UpdateProgress(ctx context.Context, jobID uuid.UUID, processedRows int) error
	Finalize(ctx context.Context, job *models.ImportJob) error
}

// ProductStore supplies the reference data snapshot and performs the
// batch insert of validated products.
type ProductStore interface {
	// LoadLeafCatalogNames returns the name->id map for catalogs that
	// may hold products.
	LoadLeafCatalogNames(ctx context.Context) (map[string]uuid.UUID, error)
	// LoadExistingSlugs returns the set of product slugs already persisted.
	LoadExistingSlugs(ctx context.Context) (map[string]struct{}, error)
	// BatchInsert persists all products in a single transactional unit.
	BatchInsert(ctx context.Context, products []*models.Product) error
}

// ChangeNotifier signals downstream read-side caches that catalog and
// product data changed. Notifications are best-effort: implementations
// must not fail the import over them.
type ChangeNotifier interface {
	ProductsImported(ctx context.Context, jobID uuid.UUID, count int)
}
