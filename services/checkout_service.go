package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ooru-foods/models"
)

const (
	FreeShippingThreshold = 500.0
	FlatShippingFee       = 49.0
)

// promoCodes maps each accepted code to its percentage discount. Codes match
// exactly after surrounding whitespace is trimmed.
var promoCodes = map[string]int{
	"SAVE10":    10,
	"OORU15":    15,
	"WELCOME20": 20,
}

// Quote prices a subtotal. Shipping and the free-shipping remainder are based
// on the subtotal before any discount.
func Quote(subtotal float64, promoCode string) (models.Quote, error) {
	q := models.Quote{Subtotal: roundMoney(subtotal)}

	code := strings.TrimSpace(promoCode)
	if code != "" {
		pct, ok := promoCodes[code]
		if !ok {
			return q, fmt.Errorf("%w: %s", models.ErrInvalidPromo, code)
		}
		q.PromoCode = code
		q.DiscountPercent = pct
		q.Discount = roundMoney(subtotal * float64(pct) / 100)
	}

	if subtotal < FreeShippingThreshold {
		q.Shipping = FlatShippingFee
		q.RemainingForFreeShipping = roundMoney(FreeShippingThreshold - subtotal)
	}

	q.Total = roundMoney(q.Subtotal - q.Discount + q.Shipping)
	return q, nil
}

// CheckoutService simulates payment processing with a fixed delay and then
// places the order through the cart.
type CheckoutService struct {
	carts  *CartService
	mailer OrderMailer
	delay  time.Duration
}

func NewCheckoutService(carts *CartService, mailer OrderMailer, delay time.Duration) *CheckoutService {
	return &CheckoutService{carts: carts, mailer: mailer, delay: delay}
}

// QuoteCart prices the persisted cart, reloading it first.
func (s *CheckoutService) QuoteCart(ctx context.Context, sessionID, promoCode string) (models.Quote, error) {
	view, err := s.carts.Init(ctx, sessionID)
	if err != nil {
		return models.Quote{}, err
	}
	return Quote(view.Total, promoCode)
}

func (s *CheckoutService) PlaceOrder(ctx context.Context, sessionID string, req models.CheckoutRequest) (*models.OrderConfirmation, error) {
	view, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(view.Items) == 0 {
		return nil, models.ErrEmptyCart
	}
	if _, err := Quote(view.Total, req.PromoCode); err != nil {
		return nil, err
	}

	if err := s.simulatePayment(ctx); err != nil {
		return nil, err
	}

	var quote models.Quote
	result, err := s.carts.Checkout(ctx, sessionID, func(subtotal float64) (float64, error) {
		q, err := Quote(subtotal, req.PromoCode)
		if err != nil {
			return 0, err
		}
		quote = q
		return q.Total, nil
	})
	if err != nil {
		return nil, err
	}

	if s.mailer != nil && req.Email != "" {
		if err := s.mailer.SendOrderConfirmation(req.Email, result.Order.ID, quote.Total, result.Items); err != nil {
			slog.WarnContext(ctx, "order confirmation mail failed", "order_id", result.Order.ID, "error", err)
		}
	}

	return &models.OrderConfirmation{
		OrderID: result.Order.ID,
		Status:  models.OrderStatusConfirmed,
		Quote:   quote,
		Items:   result.Items,
	}, nil
}

func (s *CheckoutService) simulatePayment(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
