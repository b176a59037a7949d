package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/monplancbd/storefront/internal/cart"
	"github.com/monplancbd/storefront/internal/checkout"
	"github.com/monplancbd/storefront/pkg/config"
	"github.com/monplancbd/storefront/pkg/enums"
	pkgerrors "github.com/monplancbd/storefront/pkg/errors"
	"github.com/monplancbd/storefront/pkg/logger"
	"github.com/monplancbd/storefront/pkg/types"
)

// SubmitRequest carries everything needed to turn a priced cart into an order.
type SubmitRequest struct {
	SessionID        string
	Cart             cart.Cart
	Quote            checkout.Quote
	DiscountCodes    []string
	ShippingAddress  *types.Address
	BillingAddress   *types.Address
	ShippingMethodID *int
	CustomerIP       string
	UserAgent        string
	DeviceType       string
}

// Service records orders locally and forwards them to the external order API.
// The record is written before the call so a lost upstream still leaves an
// auditable pending row.
type Service struct {
	repo      Repository
	submitURL string
	client    *http.Client
	logg      *logger.Logger
}

// NewService wires the order service from config.
func NewService(repo Repository, cfg config.OrdersConfig, logg *logger.Logger) *Service {
	timeout := cfg.SubmitTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{
		repo:      repo,
		submitURL: cfg.SubmitURL,
		client:    &http.Client{Timeout: timeout},
		logg:      logg,
	}
}

// submitPayload is the wire shape the external order API accepts.
type submitPayload struct {
	OrderID         string          `json:"orderId"`
	SessionID       string          `json:"sessionId"`
	Products        []cart.LineItem `json:"products"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	VAT             decimal.Decimal `json:"vat"`
	Total           decimal.Decimal `json:"total"`
	DiscountCodes   []string        `json:"discountCodes"`
	ShippingAddress *types.Address  `json:"shippingAddress"`
	BillingAddress  *types.Address  `json:"billingAddress,omitempty"`
	ShippingMethod  *int            `json:"shippingMethodId,omitempty"`
}

// Submit validates the request, records a pending order, forwards it upstream
// and settles the record as submitted or failed.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Order, error) {
	if req.Cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot submit an empty cart")
	}
	if req.ShippingAddress == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	if err := req.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}
	if req.BillingAddress != nil {
		if err := req.BillingAddress.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid billing address")
		}
	}

	order := &Order{
		ID:                uuid.New(),
		SessionID:         req.SessionID,
		Status:            enums.OrderStatusPending,
		Subtotal:          req.Quote.Total,
		DiscountTotal:     req.Quote.Discount,
		VATTotal:          req.Quote.AdjustedVAT,
		Total:             req.Quote.AdjustedTotal,
		DiscountCodes:     pq.StringArray(req.DiscountCodes),
		Products:          req.Cart.Items,
		ShippingAddress:   req.ShippingAddress,
		BillingAddress:    req.BillingAddress,
		ShippingMethodID:  req.ShippingMethodID,
		CustomerIP:        req.CustomerIP,
		CustomerUserAgent: req.UserAgent,
		DeviceType:        req.DeviceType,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	if err := s.forward(ctx, order); err != nil {
		if markErr := s.repo.MarkStatus(ctx, order.ID, enums.OrderStatusFailed, nil); markErr != nil && s.logg != nil {
			s.logg.Error(ctx, "marking order failed", markErr)
		}
		order.Status = enums.OrderStatusFailed
		return order, err
	}

	now := time.Now().UTC()
	if err := s.repo.MarkStatus(ctx, order.ID, enums.OrderStatusSubmitted, &now); err != nil {
		return nil, err
	}
	order.Status = enums.OrderStatusSubmitted
	order.SubmittedAt = &now
	return order, nil
}

func (s *Service) forward(ctx context.Context, order *Order) error {
	payload := submitPayload{
		OrderID:         order.ID.String(),
		SessionID:       order.SessionID,
		Products:        order.Products,
		Subtotal:        order.Subtotal,
		Discount:        order.DiscountTotal,
		VAT:             order.VATTotal,
		Total:           order.Total,
		DiscountCodes:   order.DiscountCodes,
		ShippingAddress: order.ShippingAddress,
		BillingAddress:  order.BillingAddress,
		ShippingMethod:  order.ShippingMethodID,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding order payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.submitURL, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building order request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order API unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("order API returned status %d", resp.StatusCode))
	}
	return nil
}

// OrdersForSession returns the session's recorded orders.
func (s *Service) OrdersForSession(ctx context.Context, sessionID string) ([]Order, error) {
	return s.repo.ListBySession(ctx, sessionID)
}
