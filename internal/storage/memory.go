package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agriconnect/whatsapp-backend/internal/models"
)

// MemoryCatalog holds the catalog in memory for local runs and tests
type MemoryCatalog struct {
	products []*models.Product
	supplies []*models.Supply
	profiles map[string]*models.Profile // keyed by user ID

	mu sync.RWMutex
}

// NewMemoryCatalog creates an empty in-memory catalog
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		profiles: make(map[string]*models.Profile),
	}
}

var _ Catalog = (*MemoryCatalog)(nil)
var _ ProductReader = (*MemoryCatalog)(nil)

// AddSupply registers a supply, generating its ID when empty.
func (m *MemoryCatalog) AddSupply(s models.Supply) *models.Supply {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Unit == "" {
		s.Unit = models.DefaultUnit
	}
	now := time.Now()
	s.CreatedAt, s.UpdatedAt = now, now
	m.supplies = append(m.supplies, &s)
	return &s
}

// AddProfile registers a marketplace profile so products can resolve their farmer.
func (m *MemoryCatalog) AddProfile(p models.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.profiles[p.UserID] = &p
}

func (m *MemoryCatalog) SearchSupplies(ctx context.Context, term string) ([]models.Supply, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	needle := strings.ToLower(term)
	var results []models.Supply
	for _, s := range m.supplies {
		if !strings.Contains(strings.ToLower(s.Name), needle) {
			continue
		}
		results = append(results, *s)
		if len(results) == ChatResultLimit {
			break
		}
	}
	return results, nil
}

func (m *MemoryCatalog) SearchAvailableProducts(ctx context.Context) ([]models.Product, error) {
	return m.ListAvailableProducts(ctx, ChatResultLimit)
}

func (m *MemoryCatalog) ListAvailableProducts(ctx context.Context, limit int) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []models.Product
	for _, p := range m.products {
		if p.Status != models.ProductStatusAvailable || p.QuantityAvailable <= 0 {
			continue
		}
		results = append(results, m.withFarmer(p))
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results, nil
}

func (m *MemoryCatalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.products {
		if p.ID == id {
			out := m.withFarmer(p)
			return &out, nil
		}
	}
	return nil, catalogErr("get_product", ErrProductNotFound)
}

func (m *MemoryCatalog) InsertProduct(ctx context.Context, product *models.Product) error {
	if product == nil {
		return catalogErr("insert_product", errors.New("nil product"))
	}
	if product.Name == "" || product.FarmerID == "" {
		return &CatalogError{Op: "insert_product", Kind: KindConstraint, Err: errors.New("name and farmer_id are required")}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.Unit == "" {
		product.Unit = models.DefaultUnit
	}
	if product.Status == "" {
		product.Status = models.ProductStatusAvailable
	}
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now

	stored := *product
	stored.Farmer = nil
	m.products = append(m.products, &stored)
	return nil
}

// Products returns a snapshot of every stored product, in insertion order.
func (m *MemoryCatalog) Products() []models.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out
}

// withFarmer must be called with mu held.
func (m *MemoryCatalog) withFarmer(p *models.Product) models.Product {
	out := *p
	if profile, ok := m.profiles[p.FarmerID]; ok {
		cp := *profile
		out.Farmer = &cp
	}
	return out
}
