package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/agriconnect/whatsapp-backend/internal/models"
)

// ChatResultLimit caps how many records a WhatsApp reply lists.
const ChatResultLimit = 5

// Catalog is the product/supply record store the conversation engine reads and writes.
type Catalog interface {
	// SearchSupplies returns up to ChatResultLimit supplies whose name contains term, ignoring case.
	SearchSupplies(ctx context.Context, term string) ([]models.Supply, error)
	// SearchAvailableProducts returns up to ChatResultLimit available products with stock, farmer preloaded.
	SearchAvailableProducts(ctx context.Context) ([]models.Product, error)
	// InsertProduct stores a single new product. ID and timestamps are filled in.
	InsertProduct(ctx context.Context, product *models.Product) error
}

// ProductReader serves the read-only product routes.
type ProductReader interface {
	ListAvailableProducts(ctx context.Context, limit int) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// ErrProductNotFound is returned by GetProduct for unknown IDs.
var ErrProductNotFound = errors.New("product not found")

// ErrorKind classifies catalog failures.
type ErrorKind string

const (
	KindUnavailable ErrorKind = "unavailable"
	KindConstraint  ErrorKind = "constraint"
	KindNotFound    ErrorKind = "not_found"
	KindUnknown     ErrorKind = "unknown"
)

// CatalogError is the tagged failure returned by every catalog backend.
type CatalogError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog %s failed (%s): %v", e.Op, e.Kind, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

func catalogErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CatalogError
	if errors.As(err, &ce) {
		return err
	}
	return &CatalogError{Op: op, Kind: classify(err), Err: err}
}

// classify maps driver errors onto an ErrorKind using postgres SQLSTATE classes.
func classify(err error) ErrorKind {
	if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrProductNotFound) {
		return KindNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindUnavailable
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return KindUnavailable
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "23", "22":
			return KindConstraint
		case "08", "53", "57", "58":
			return KindUnavailable
		}
	}
	return KindUnknown
}
