package repository

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"catalog-service/internal/models"
)

// Cache TTL constants
const (
	ProductCacheTTL     = 5 * time.Minute  // Single product cache
	ProductListCacheTTL = 2 * time.Minute  // Product list cache (shorter due to frequent changes)
	CatalogCacheTTL     = 30 * time.Minute // Catalogs rarely change
)

const cacheKeyPrefix = "catalog:"

// ErrSlugConflict is returned when the batch insert hits the slug
// uniqueness constraint. The per-job duplicate pre-check cannot rule
// this out across concurrently running jobs, so the violation must
// surface as a fault rather than be silently dropped.
var ErrSlugConflict = errors.New("duplicate slug at insert time")

type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewProductsRepository(db *gorm.DB, redisClient *redis.Client) *ProductsRepository {
	return &ProductsRepository{db: db, redis: redisClient}
}

// generateListCacheKey creates a deterministic cache key for list queries
func generateListCacheKey(prefix string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s%s:%s", cacheKeyPrefix, prefix, hex.EncodeToString(hash[:]))
}

func (r *ProductsRepository) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if r.redis == nil {
		return false
	}
	data, err := r.redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (r *ProductsRepository) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if r.redis == nil {
		return
	}
	if data, err := json.Marshal(value); err == nil {
		_ = r.redis.Set(ctx, key, data, ttl).Err()
	}
}

// deleteCachePattern removes all keys matching the pattern. Best-effort;
// a stale list entry expires on its own TTL anyway.
func (r *ProductsRepository) deleteCachePattern(ctx context.Context, pattern string) {
	if r.redis == nil {
		return
	}
	iter := r.redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		_ = r.redis.Del(ctx, iter.Val()).Err()
	}
}

// InvalidateProductCaches invalidates read caches after product data changed
func (r *ProductsRepository) InvalidateProductCaches(ctx context.Context, productIDs ...uuid.UUID) {
	for _, id := range productIDs {
		_ = func() error {
			if r.redis == nil {
				return nil
			}
			return r.redis.Del(ctx, fmt.Sprintf("%sproduct:%s", cacheKeyPrefix, id)).Err()
		}()
	}
	r.deleteCachePattern(ctx, cacheKeyPrefix+"products:list:*")
}

// Product CRUD Operations

// CreateProduct creates a new product
func (r *ProductsRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}

	// Generate slug from name if not provided, suffixed with the short
	// id so two products with the same name never collide
	if product.Slug == "" {
		product.Slug = fmt.Sprintf("%s-%s", slug.Make(product.Name), product.ID.String()[:8])
	}

	err := r.db.WithContext(ctx).Create(product).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrSlugConflict, product.Slug)
		}
		return err
	}
	r.InvalidateProductCaches(ctx, product.ID)
	return nil
}

// GetProductByID retrieves a product by ID with caching
func (r *ProductsRepository) GetProductByID(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	cacheKey := fmt.Sprintf("%sproduct:%s", cacheKeyPrefix, productID)

	var cached models.Product
	if r.cacheGet(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	var product models.Product
	err := r.db.WithContext(ctx).Preload("Catalog").Where("id = ?", productID).First(&product).Error
	if err != nil {
		return nil, err
	}

	r.cacheSet(ctx, cacheKey, &product, ProductCacheTTL)
	return &product, nil
}

// ListProducts retrieves products with filtering, pagination and caching
func (r *ProductsRepository) ListProducts(ctx context.Context, req *models.ListProductsRequest) ([]models.Product, int64, error) {
	cacheKey := generateListCacheKey("products:list", req)

	var cached struct {
		Products []models.Product `json:"products"`
		Total    int64            `json:"total"`
	}
	if r.cacheGet(ctx, cacheKey, &cached) {
		return cached.Products, cached.Total, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if req.Query != nil && *req.Query != "" {
		pattern := "%" + strings.ToLower(*req.Query) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(slug) LIKE ?", pattern, pattern)
	}
	if req.CatalogID != nil {
		query = query.Where("catalog_id = ?", *req.CatalogID)
	}
	if req.IsActive != nil {
		query = query.Where("is_active = ?", *req.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	offset := (req.Page - 1) * req.Limit
	err := query.Order("created_at DESC").Offset(offset).Limit(req.Limit).Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	cached.Products = products
	cached.Total = total
	r.cacheSet(ctx, cacheKey, &cached, ProductListCacheTTL)

	return products, total, nil
}

// UpdateProduct applies updates to a product
func (r *ProductsRepository) UpdateProduct(ctx context.Context, productID uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).Updates(updates)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return fmt.Errorf("%w", ErrSlugConflict)
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.InvalidateProductCaches(ctx, productID)
	return nil
}

// DeleteProduct soft-deletes a product
func (r *ProductsRepository) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", productID).Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.InvalidateProductCaches(ctx, productID)
	return nil
}

// Catalog Operations

// ListCatalogs retrieves all catalogs ordered by tree position
func (r *ProductsRepository) ListCatalogs(ctx context.Context) ([]models.Catalog, error) {
	cacheKey := cacheKeyPrefix + "catalogs:list"

	var cached []models.Catalog
	if r.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	var catalogs []models.Catalog
	err := r.db.WithContext(ctx).Order("level ASC, position ASC, name ASC").Find(&catalogs).Error
	if err != nil {
		return nil, err
	}

	r.cacheSet(ctx, cacheKey, catalogs, CatalogCacheTTL)
	return catalogs, nil
}

// GetCatalogByID retrieves a single catalog
func (r *ProductsRepository) GetCatalogByID(ctx context.Context, catalogID uuid.UUID) (*models.Catalog, error) {
	var catalog models.Catalog
	err := r.db.WithContext(ctx).Where("id = ?", catalogID).First(&catalog).Error
	if err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Import reference data snapshot

// LoadLeafCatalogNames returns name->id for active leaf-level catalogs.
// Loaded once per import job; only leaf catalogs are valid import targets.
func (r *ProductsRepository) LoadLeafCatalogNames(ctx context.Context) (map[string]uuid.UUID, error) {
	var catalogs []models.Catalog
	err := r.db.WithContext(ctx).
		Select("id", "name").
		Where("level = ? AND (is_active IS NULL OR is_active = true)", models.CatalogLeafLevel).
		Find(&catalogs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog names: %w", err)
	}

	names := make(map[string]uuid.UUID, len(catalogs))
	for _, catalog := range catalogs {
		names[catalog.Name] = catalog.ID
	}
	return names, nil
}

// LoadExistingSlugs returns the set of product slugs already persisted,
// including soft-deleted rows since those still hold the unique constraint.
func (r *ProductsRepository) LoadExistingSlugs(ctx context.Context) (map[string]struct{}, error) {
	var slugs []string
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Product{}).Pluck("slug", &slugs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load existing slugs: %w", err)
	}

	set := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		set[s] = struct{}{}
	}
	return set, nil
}

// BatchInsert persists all products from one import job in a single
// transaction: either every row commits or none do. A uniqueness
// violation here means a concurrent job won the slug between the
// pre-check and the insert; it surfaces as ErrSlugConflict.
func (r *ProductsRepository) BatchInsert(ctx context.Context, products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}

	now := time.Now()
	for _, product := range products {
		if product.ID == uuid.Nil {
			product.ID = uuid.New()
		}
		product.CreatedAt = now
		product.UpdatedAt = now
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&products).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrSlugConflict, err)
		}
		return fmt.Errorf("batch insert failed: %w", err)
	}

	r.InvalidateProductCaches(ctx)
	return nil
}

// isUniqueViolation reports whether the database rejected a write over a
// unique constraint (postgres SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key value")
}
