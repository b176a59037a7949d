package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/monplancbd/storefront/internal/cart"
	"github.com/monplancbd/storefront/pkg/enums"
	"github.com/monplancbd/storefront/pkg/types"
)

// Order is the durable record of a checkout attempt: the cart snapshot and
// its priced totals, written before the external order API is called so a
// failed submission still leaves a trace.
type Order struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SessionID         string            `gorm:"column:session_id;not null"`
	Status            enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	Subtotal          decimal.Decimal   `gorm:"column:subtotal;type:numeric(12,2);not null"`
	DiscountTotal     decimal.Decimal   `gorm:"column:discount_total;type:numeric(12,2);not null;default:0"`
	VATTotal          decimal.Decimal   `gorm:"column:vat_total;type:numeric(12,2);not null;default:0"`
	Total             decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	DiscountCodes     pq.StringArray    `gorm:"column:discount_codes;type:text[]"`
	Products          []cart.LineItem   `gorm:"column:products;type:jsonb;serializer:json"`
	ShippingAddress   *types.Address    `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	BillingAddress    *types.Address    `gorm:"column:billing_address;type:jsonb;serializer:json"`
	ShippingMethodID  *int              `gorm:"column:shipping_method_id"`
	CustomerIP        string            `gorm:"column:customer_ip"`
	CustomerUserAgent string            `gorm:"column:customer_user_agent"`
	DeviceType        string            `gorm:"column:device_type"`
	SubmittedAt       *time.Time        `gorm:"column:submitted_at"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table GORM maps the model onto.
func (Order) TableName() string {
	return "orders"
}
