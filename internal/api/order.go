package api

import (
	"context"
	"net/http"
	"regexp"
	"strings"
)

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

// MarketRules are the client-side preflight checks for order submission.
// They mirror what the backend enforces so obviously bad input never
// crosses the wire; the backend remains the final authority.
type MarketRules struct {
	PhonePattern  *regexp.Regexp
	MinAddressLen int
}

// DefaultMarketRules matches the home market: local nine-digit numbers
// starting with 0, delivery address of at least ten characters.
func DefaultMarketRules() MarketRules {
	return MarketRules{
		PhonePattern:  regexp.MustCompile(`^0\d{8}$`),
		MinAddressLen: 10,
	}
}

type OrderRequest struct {
	UserID        int64         `json:"user_id"`
	CustomerName  string        `json:"customer_name"`
	Phone         string        `json:"phone"`
	Address       string        `json:"address"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	FromCart      bool          `json:"from_cart"`
}

// OrderResponse carries server-computed amounts. Shipping is free above the
// market's subtotal threshold and flat-rate otherwise; that rule lives on
// the server and the client only displays the result.
type OrderResponse struct {
	OrderNumber  string `json:"order_number"`
	Status       string `json:"status"`
	Subtotal     int    `json:"subtotal"`
	ShippingCost int    `json:"shipping_cost"`
	TotalAmount  int    `json:"total_amount"`
	Currency     string `json:"currency"`
}

// Validate runs the market preflight. Failures come back as a validation
// Error with per-field messages, the same shape the backend uses, so the
// caller surfaces both identically.
func (r OrderRequest) Validate(rules MarketRules) error {
	var fields []string
	if strings.TrimSpace(r.CustomerName) == "" {
		fields = append(fields, "customer_name is required")
	}
	if rules.PhonePattern != nil && !rules.PhonePattern.MatchString(r.Phone) {
		fields = append(fields, "phone does not match the market format")
	}
	if len(strings.TrimSpace(r.Address)) < rules.MinAddressLen {
		fields = append(fields, "address is too short")
	}
	switch r.PaymentMethod {
	case PaymentCard, PaymentCash:
	default:
		fields = append(fields, "payment_method must be card or cash")
	}

	if len(fields) > 0 {
		return &Error{
			StatusCode: http.StatusUnprocessableEntity,
			Message:    strings.Join(fields, "; "),
			Fields:     fields,
		}
	}
	return nil
}

func (c *Client) CreateOrder(ctx context.Context, rules MarketRules, req OrderRequest) (OrderResponse, error) {
	if err := req.Validate(rules); err != nil {
		return OrderResponse{}, err
	}

	var resp OrderResponse
	err := c.do(ctx, http.MethodPost, "/orders", req, &resp)
	return resp, err
}
