// Package dispatch forwards personalized messages to the vendor delivery
// channel. The vendor accepts synchronously and reports the real outcome
// later through the receipt callback, so a failed send here is a warning,
// never a FAILED log.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/xenocrm/crm-gateway/internal/errs"
	"github.com/xenocrm/crm-gateway/internal/metrics"
)

// Sender is what the campaign dispatcher depends on.
type Sender interface {
	Send(ctx context.Context, logID, customerID, message string) error
}

// SendRequest is the vendor's synchronous request contract.
type SendRequest struct {
	LogID      string `json:"logId"`
	CustomerID string `json:"customerId"`
	Message    string `json:"message"`
}

type HTTPVendor struct {
	baseURL  string
	sendPath string
	client   *http.Client
	br       *MicroBreaker
}

func NewHTTPVendor(baseURL, sendPath string, timeoutMs, failThreshold, openForMs int) *HTTPVendor {
	if timeoutMs <= 0 {
		timeoutMs = 3000
	}
	if failThreshold <= 0 {
		failThreshold = 3
	}
	if openForMs <= 0 {
		openForMs = 15000
	}
	if sendPath == "" {
		sendPath = "/vender/send"
	}

	return &HTTPVendor{
		baseURL:  baseURL,
		sendPath: sendPath,
		client:   &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		br:       NewMicroBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

var _ Sender = (*HTTPVendor)(nil)

func (v *HTTPVendor) Send(ctx context.Context, logID, customerID, message string) error {
	if !v.br.TryAcquire() {
		metrics.VendorSendsTotal.WithLabelValues("error").Inc()
		return errs.Vendor(nil, "vendor channel unavailable (breaker open)")
	}

	if err := v.post(ctx, SendRequest{LogID: logID, CustomerID: customerID, Message: message}); err != nil {
		v.br.OnFailure()
		metrics.VendorSendsTotal.WithLabelValues("error").Inc()
		return errs.Vendor(err, "vendor send failed")
	}

	v.br.OnSuccess()
	metrics.VendorSendsTotal.WithLabelValues("ok").Inc()

	return nil
}

func (v *HTTPVendor) post(ctx context.Context, body SendRequest) error {
	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+v.sendPath, bytes.NewReader(b))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := v.client.Do(req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("vendor path=%s status=%d", v.sendPath, res.StatusCode)
	}

	return nil
}
