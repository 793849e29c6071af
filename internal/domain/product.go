package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is the catalog boundary this engine consumes: current unit
// price and stock for a (product, size) pair. Catalog CRUD itself lives
// elsewhere.
type ProductVariant struct {
	ProductID   uuid.UUID
	ProductName string
	Size        string
	UnitPrice   decimal.Decimal
	Stock       int32
}
