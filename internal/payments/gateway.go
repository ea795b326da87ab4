package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vastra/internal/logger"
	"vastra/internal/models"

	"go.uber.org/zap"
)

// GatewayAdapter implements the gateway-mediated flow. Initiate creates a
// remote order the client completes on the gateway's checkout; Confirm
// verifies the signed callback the gateway posts back. The remote order id
// stored at initiation is the reference the signature is checked against.
type GatewayAdapter struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// NewGatewayAdapter creates a new GatewayAdapter.
func NewGatewayAdapter(keyID, keySecret, baseURL string) *GatewayAdapter {
	if keySecret == "" {
		logger.L().Warn("gateway key secret is empty, signature verification will fail")
	}
	return &GatewayAdapter{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (a *GatewayAdapter) Method() models.PaymentMethod {
	return models.MethodGateway
}

// KeyID returns the public key identifier clients use to open the gateway
// checkout.
func (a *GatewayAdapter) KeyID() string {
	return a.keyID
}

type gatewayOrderRequest struct {
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type gatewayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// Initiate creates a remote order for the total amount. The returned handle
// carries the remote order id and key id the client needs to open the
// gateway checkout.
func (a *GatewayAdapter) Initiate(ctx context.Context, order *models.Order) (*Handle, error) {
	log := logger.L().With(
		zap.String("order_id", order.ID),
		zap.Float64("total", order.Total),
	)

	body, err := json.Marshal(gatewayOrderRequest{
		Amount:   int64(order.Total * 100),
		Currency: "INR",
		Receipt:  order.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gateway order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.SetBasicAuth(a.keyID, a.keySecret)
	req.Header.Set("Content-Type", "application/json")

	log.Info("creating gateway order")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		log.Error("gateway request failed", zap.Error(err))
		return nil, fmt.Errorf("gateway order creation failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("gateway returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", respBody),
		)
		return nil, fmt.Errorf("gateway error: %s", string(respBody))
	}

	var res gatewayOrderResponse
	if err := json.Unmarshal(respBody, &res); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	log.Info("gateway order created", zap.String("gateway_order_id", res.ID))

	return &Handle{
		Method:         models.MethodGateway,
		InitialStatus:  models.StatusPendingPayment,
		GatewayOrderID: res.ID,
		KeyID:          a.keyID,
		Amount:         order.Total,
		Currency:       "INR",
	}, nil
}

// Confirm checks the callback signature against the stored remote order id.
// Only a holder of the key secret can produce a valid signature, so a
// passing check proves the callback came from the gateway and refers to
// this exact order.
func (a *GatewayAdapter) Confirm(ctx context.Context, record *models.PaymentRecord, proof Proof) (*Confirmation, error) {
	if proof.GatewayPaymentID == "" || proof.Signature == "" {
		return nil, ErrSignatureMismatch
	}
	expected := a.sign(record.GatewayOrderID + "|" + proof.GatewayPaymentID)
	if !hmac.Equal([]byte(expected), []byte(proof.Signature)) {
		logger.L().Warn("gateway callback signature mismatch",
			zap.String("gateway_order_id", record.GatewayOrderID),
			zap.String("gateway_payment_id", proof.GatewayPaymentID),
		)
		return nil, ErrSignatureMismatch
	}
	return &Confirmation{PaymentID: proof.GatewayPaymentID}, nil
}

// Sign computes the callback signature for a payload. Exposed for tests and
// for local gateway simulators.
func (a *GatewayAdapter) Sign(gatewayOrderID, gatewayPaymentID string) string {
	return a.sign(gatewayOrderID + "|" + gatewayPaymentID)
}

func (a *GatewayAdapter) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(a.keySecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
