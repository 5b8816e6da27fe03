// Package vender simulates the external delivery channel. It accepts every
// send synchronously and reports the real outcome later by calling the
// receipt endpoint, like a third-party delivery network would.
package vender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/xenocrm/crm-gateway/internal/logger"
	"github.com/xenocrm/crm-gateway/internal/model"
	"go.uber.org/zap"
)

const (
	deliveredMessage = "Delivered"
	failedMessage    = "Failed to deliver"
)

// Receipt is the asynchronous callback payload.
type Receipt struct {
	LogID         string `json:"logId"`
	Status        string `json:"status"`
	VendorMessage string `json:"vendorMessage"`
}

type Config struct {
	SuccessRate float64       // delivery success probability, default 0.9
	Delay       time.Duration // simulated network delay before the receipt, default 1s
	CallbackURL string        // receipt endpoint, e.g. http://host/campaign/receipt
	TimeoutMs   int
}

// Simulator draws a random delivery outcome per message. Probability and
// delay come from config so tests can pin them.
type Simulator struct {
	successRate float64
	delay       time.Duration
	callbackURL string
	client      *http.Client

	rngMu sync.Mutex
	rng   *rand.Rand

	wg sync.WaitGroup
}

func NewSimulator(cfg Config) *Simulator {
	rate := cfg.SuccessRate
	if rate <= 0 || rate > 1 {
		rate = 0.9
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = time.Second
	}
	timeout := cfg.TimeoutMs
	if timeout <= 0 {
		timeout = 5000
	}

	return &Simulator{
		successRate: rate,
		delay:       delay,
		callbackURL: cfg.CallbackURL,
		client:      &http.Client{Timeout: time.Duration(timeout) * time.Millisecond},
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Accept acknowledges a send and schedules the delayed receipt callback.
// Fire-and-forget: a failed callback is logged and dropped, never retried,
// which can leave the log PENDING forever. That mirrors the real channel.
func (s *Simulator) Accept(logID string) {
	s.rngMu.Lock()
	delivered := s.rng.Float64() < s.successRate
	s.rngMu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		time.Sleep(s.delay)

		r := Receipt{LogID: logID, Status: model.StatusFailed.String(), VendorMessage: failedMessage}
		if delivered {
			r.Status = model.StatusSent.String()
			r.VendorMessage = deliveredMessage
		}

		if err := s.postReceipt(r); err != nil {
			logger.L().Error("vender: receipt callback failed",
				zap.String("logId", logID), zap.Error(err))
			return
		}
		logger.L().Debug("vender: receipt delivered",
			zap.String("logId", logID), zap.String("status", r.Status))
	}()
}

func (s *Simulator) postReceipt(r Receipt) error {
	b, _ := json.Marshal(r)
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPut, s.callbackURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("receipt endpoint status=%d", res.StatusCode)
	}
	return nil
}

// Wait blocks until every scheduled receipt has been attempted. Used by
// graceful shutdown and tests.
func (s *Simulator) Wait() {
	s.wg.Wait()
}
