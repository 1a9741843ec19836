package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	PayPalSandboxURL = "https://api-m.sandbox.paypal.com"
	PayPalLiveURL    = "https://api-m.paypal.com"
)

// PayPal verifies checkout orders with the PayPal REST API.
type PayPal struct {
	baseURL string
	client  *http.Client
}

// NewPayPal returns a verifier authenticating with the client credentials
// grant. httpClient, if non-nil, is used for both token and API calls.
func NewPayPal(baseURL, clientID, secret string, httpClient *http.Client) *PayPal {
	baseURL = strings.TrimRight(baseURL, "/")
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: secret,
		TokenURL:     baseURL + "/v1/oauth2/token",
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	ctx := context.Background()
	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}
	return &PayPal{baseURL: baseURL, client: cfg.Client(ctx)}
}

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalOrder struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Amount paypalAmount `json:"amount"`
	} `json:"purchase_units"`
}

func (p *PayPal) Verify(ctx context.Context, transactionID string) (Verification, error) {
	u := p.baseURL + "/v2/checkout/orders/" + url.PathEscape(transactionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Verification{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Verification{}, ErrProcessorTimeout
		}
		return Verification{}, fmt.Errorf("%w: %v", ErrProcessorUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusUnprocessableEntity:
		return Verification{TransactionID: transactionID, Status: StatusFailed}, nil
	case resp.StatusCode != http.StatusOK:
		return Verification{}, fmt.Errorf("%w: status %d", ErrProcessorUnavailable, resp.StatusCode)
	}

	var order paypalOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return Verification{}, fmt.Errorf("%w: decoding order: %v", ErrProcessorUnavailable, err)
	}

	v := Verification{TransactionID: transactionID, Status: paypalStatus(order.Status)}
	if len(order.PurchaseUnits) > 0 {
		amt := order.PurchaseUnits[0].Amount
		v.Currency = amt.CurrencyCode
		if d, err := decimal.NewFromString(amt.Value); err == nil {
			v.Amount = d
		}
	}
	return v, nil
}

func paypalStatus(s string) Status {
	switch strings.ToUpper(s) {
	case "COMPLETED":
		return StatusCompleted
	case "CREATED", "SAVED", "APPROVED", "PAYER_ACTION_REQUIRED":
		return StatusPending
	default:
		return StatusFailed
	}
}
