package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monplancbd/storefront/pkg/enums"
	pkgerrors "github.com/monplancbd/storefront/pkg/errors"
)

// Repository encapsulates order persistence.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	MarkStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, submittedAt *time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListBySession(ctx context.Context, sessionID string) ([]Order, error)
}

// GormRepository is the Postgres-backed Repository.
type GormRepository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Create inserts the order record.
func (r *GormRepository) Create(ctx context.Context, order *Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order record")
	}
	return nil
}

// MarkStatus transitions the order's status, stamping the submission time when
// provided.
func (r *GormRepository) MarkStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, submittedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if submittedAt != nil {
		updates["submitted_at"] = *submittedAt
	}
	res := r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "updating order status")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

// FindByID loads one order.
func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return &order, nil
}

// ListBySession returns the session's orders, newest first.
func (r *GormRepository) ListBySession(ctx context.Context, sessionID string) ([]Order, error) {
	var records []Order
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing session orders")
	}
	return records, nil
}
