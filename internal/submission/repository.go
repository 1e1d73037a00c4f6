package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned for unknown request ids.
var ErrNotFound = errors.New("request not found")

// Repository stores requests.
type Repository interface {
	Create(ctx context.Context, req *Request) error
	Get(ctx context.Context, id uuid.UUID) (*Request, error)
}

// GormRepository keeps requests in Postgres.
type GormRepository struct {
	db *gorm.DB
}

// OpenPostgres connects to Postgres with GORM's own logging silenced.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// NewGormRepository wraps an open database.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates or updates the request tables.
func (r *GormRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&Request{}, &RequestDocument{}); err != nil {
		return fmt.Errorf("migrate requests: %w", err)
	}
	return nil
}

// Create stores the request and its documents in one transaction.
func (r *GormRepository) Create(ctx context.Context, req *Request) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Documents").Create(req).Error; err != nil {
			return fmt.Errorf("insert request: %w", err)
		}
		for i := range req.Documents {
			req.Documents[i].RequestID = req.ID
			if err := tx.Create(&req.Documents[i]).Error; err != nil {
				return fmt.Errorf("insert document %s: %w", req.Documents[i].DocumentType, err)
			}
		}
		return nil
	})
}

// Get loads a request with its documents.
func (r *GormRepository) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	var req Request
	err := r.db.WithContext(ctx).Preload("Documents").First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	return &req, nil
}

// MemoryRepository keeps requests in process memory.
type MemoryRepository struct {
	mu       sync.Mutex
	requests map[uuid.UUID]Request
	order    []uuid.UUID
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{requests: make(map[uuid.UUID]Request)}
}

// Create stores a copy of req.
func (m *MemoryRepository) Create(_ context.Context, req *Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.requests[req.ID]; exists {
		return fmt.Errorf("insert request: duplicate id %s", req.ID)
	}
	stored := *req
	stored.Documents = append([]RequestDocument(nil), req.Documents...)
	for i := range stored.Documents {
		stored.Documents[i].RequestID = req.ID
	}
	m.requests[req.ID] = stored
	m.order = append(m.order, req.ID)
	return nil
}

// Get returns a copy of the stored request.
func (m *MemoryRepository) Get(_ context.Context, id uuid.UUID) (*Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &req, nil
}

// All returns the stored requests in insertion order.
func (m *MemoryRepository) All() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.requests[id])
	}
	return out
}
