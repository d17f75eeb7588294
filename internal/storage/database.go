package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agriconnect/whatsapp-backend/internal/models"
)

// DatabaseCatalog implements Catalog on postgres through gorm
type DatabaseCatalog struct {
	db *gorm.DB
}

// NewDatabaseCatalog creates a catalog backed by db
func NewDatabaseCatalog(db *gorm.DB) *DatabaseCatalog {
	return &DatabaseCatalog{db: db}
}

var _ Catalog = (*DatabaseCatalog)(nil)
var _ ProductReader = (*DatabaseCatalog)(nil)

func (d *DatabaseCatalog) SearchSupplies(ctx context.Context, term string) ([]models.Supply, error) {
	var supplies []models.Supply
	err := d.db.WithContext(ctx).
		Where("name ILIKE ?", "%"+escapeLike(term)+"%").
		Limit(ChatResultLimit).
		Find(&supplies).Error
	if err != nil {
		return nil, catalogErr("search_supplies", err)
	}
	return supplies, nil
}

func (d *DatabaseCatalog) SearchAvailableProducts(ctx context.Context) ([]models.Product, error) {
	products, err := d.availableProducts(ctx, ChatResultLimit)
	if err != nil {
		return nil, catalogErr("search_products", err)
	}
	return products, nil
}

func (d *DatabaseCatalog) ListAvailableProducts(ctx context.Context, limit int) ([]models.Product, error) {
	products, err := d.availableProducts(ctx, limit)
	if err != nil {
		return nil, catalogErr("list_products", err)
	}
	return products, nil
}

func (d *DatabaseCatalog) availableProducts(ctx context.Context, limit int) ([]models.Product, error) {
	q := d.db.WithContext(ctx).
		Preload("Farmer").
		Where("status = ?", models.ProductStatusAvailable).
		Where("quantity_available > ?", 0)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var products []models.Product
	err := q.Find(&products).Error
	return products, err
}

func (d *DatabaseCatalog) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, catalogErr("get_product", ErrProductNotFound)
	}

	var product models.Product
	err := d.db.WithContext(ctx).Preload("Farmer").First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, catalogErr("get_product", ErrProductNotFound)
	}
	if err != nil {
		return nil, catalogErr("get_product", err)
	}
	return &product, nil
}

func (d *DatabaseCatalog) InsertProduct(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.Unit == "" {
		product.Unit = models.DefaultUnit
	}
	if product.Status == "" {
		product.Status = models.ProductStatusAvailable
	}
	if err := d.db.WithContext(ctx).Omit("Farmer").Create(product).Error; err != nil {
		return catalogErr("insert_product", err)
	}
	return nil
}

// escapeLike keeps user input from acting as a LIKE wildcard.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
