package importer

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"catalog-service/internal/models"
)

// MockJobStore is a mock implementation of JobStore
type MockJobStore struct {
	mock.Mock
}

var _ JobStore = (*MockJobStore)(nil)

func (m *MockJobStore) Create(ctx context.Context, job *models.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobStore) UpdateProgress(ctx context.Context, jobID uuid.UUID, processedRows int) error {
	args := m.Called(ctx, jobID, processedRows)
	return args.Error(0)
}

func (m *MockJobStore) Finalize(ctx context.Context, job *models.ImportJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockProductStore is a mock implementation of ProductStore
type MockProductStore struct {
	mock.Mock
}

var _ ProductStore = (*MockProductStore)(nil)

func (m *MockProductStore) LoadLeafCatalogNames(ctx context.Context) (map[string]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]uuid.UUID), args.Error(1)
}

func (m *MockProductStore) LoadExistingSlugs(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockProductStore) BatchInsert(ctx context.Context, products []*models.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

// MockChangeNotifier is a mock implementation of ChangeNotifier
type MockChangeNotifier struct {
	mock.Mock
}

var _ ChangeNotifier = (*MockChangeNotifier)(nil)

func (m *MockChangeNotifier) ProductsImported(ctx context.Context, jobID uuid.UUID, count int) {
	m.Called(ctx, jobID, count)
}
