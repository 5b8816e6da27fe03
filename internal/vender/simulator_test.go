package vender

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenocrm/crm-gateway/internal/model"
)

type receiptRecorder struct {
	mu       sync.Mutex
	received []Receipt
	methods  []string
}

func (rr *receiptRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec Receipt
		_ = json.NewDecoder(r.Body).Decode(&rec)
		rr.mu.Lock()
		rr.received = append(rr.received, rec)
		rr.methods = append(rr.methods, r.Method)
		rr.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
	}
}

func TestSimulatorDeliversReceipts(t *testing.T) {
	rr := &receiptRecorder{}
	srv := httptest.NewServer(rr.handler())
	defer srv.Close()

	sim := NewSimulator(Config{
		SuccessRate: 1.0,
		Delay:       time.Millisecond,
		CallbackURL: srv.URL + "/campaign/receipt",
	})

	sim.Accept("log-1")
	sim.Accept("log-2")
	sim.Wait()

	rr.mu.Lock()
	defer rr.mu.Unlock()
	require.Len(t, rr.received, 2)

	ids := map[string]bool{}
	for i, rec := range rr.received {
		ids[rec.LogID] = true
		assert.Equal(t, model.StatusSent.String(), rec.Status)
		assert.Equal(t, "Delivered", rec.VendorMessage)
		assert.Equal(t, http.MethodPut, rr.methods[i])
	}
	assert.True(t, ids["log-1"] && ids["log-2"])
}

func TestSimulatorFailureOutcome(t *testing.T) {
	rr := &receiptRecorder{}
	srv := httptest.NewServer(rr.handler())
	defer srv.Close()

	// SuccessRate just above zero: rng.Float64() < rate is effectively never
	// true, so every draw fails deterministically enough for a test.
	sim := NewSimulator(Config{
		SuccessRate: 1e-12,
		Delay:       time.Millisecond,
		CallbackURL: srv.URL,
	})

	for i := 0; i < 5; i++ {
		sim.Accept("log-x")
	}
	sim.Wait()

	rr.mu.Lock()
	defer rr.mu.Unlock()
	require.Len(t, rr.received, 5)
	for _, rec := range rr.received {
		assert.Equal(t, model.StatusFailed.String(), rec.Status)
		assert.Equal(t, "Failed to deliver", rec.VendorMessage)
	}
}

func TestSimulatorCallbackFailureIsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sim := NewSimulator(Config{
		SuccessRate: 1.0,
		Delay:       time.Millisecond,
		CallbackURL: srv.URL,
	})

	// must not panic or hang; the receipt is logged and dropped
	sim.Accept("log-1")
	sim.Wait()
}

func TestSimulatorDefaults(t *testing.T) {
	sim := NewSimulator(Config{})
	assert.Equal(t, 0.9, sim.successRate)
	assert.Equal(t, time.Second, sim.delay)
}
