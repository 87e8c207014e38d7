package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/orderlab/order-system/shared/models"
	"github.com/orderlab/order-system/shared/saga"
	"github.com/pkg/errors"
)

const defaultPaymentTimeout = 5 * time.Second

// PaymentClient calls the payment service over HTTP for the synchronous
// pattern. The call is bounded by a timeout; a slow or unreachable
// payment service degrades the outcome instead of hanging the request.
type PaymentClient struct {
	baseURL string
	client  *http.Client
}

// NewPaymentClient creates a client for the payment service at baseURL.
// A non-positive timeout falls back to the default.
func NewPaymentClient(baseURL string, timeout time.Duration) *PaymentClient {
	if timeout <= 0 {
		timeout = defaultPaymentTimeout
	}
	return &PaymentClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type paymentRequest struct {
	OrderID int64  `json:"order_id"`
	Codigo  string `json:"codigo"`
	Valor   string `json:"valor"`
}

type paymentResponse struct {
	Status string `json:"status"`
}

// Process submits the order for immediate payment processing and maps
// the result onto a saga outcome. Timeouts map to OutcomeTimedOut and
// other transport failures to OutcomeTransportError; the returned error
// carries the cause for logging.
func (c *PaymentClient) Process(ctx context.Context, orderID int64, codigo string, valor models.Money) (saga.Outcome, error) {
	body, err := json.Marshal(paymentRequest{
		OrderID: orderID,
		Codigo:  codigo,
		Valor:   valor.String(),
	})
	if err != nil {
		return saga.OutcomeTransportError, errors.Wrap(err, "failed to encode payment request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/payments/process", bytes.NewReader(body))
	if err != nil {
		return saga.OutcomeTransportError, errors.Wrap(err, "failed to build payment request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return saga.OutcomeTimedOut, errors.Wrap(err, "payment call timed out")
		}
		return saga.OutcomeTransportError, errors.Wrap(err, "payment call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return saga.OutcomeTransportError, errors.Errorf("payment service returned %d", resp.StatusCode)
	}

	var pr paymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return saga.OutcomeTransportError, errors.Wrap(err, "failed to decode payment response")
	}

	outcome := saga.OutcomeFromPaymentStatus(pr.Status)
	if outcome == saga.OutcomeUnknown {
		log.Printf("[order-service] payment service returned unrecognized status %q", pr.Status)
	}
	return outcome, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
