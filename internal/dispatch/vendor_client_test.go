package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenocrm/crm-gateway/internal/errs"
)

func TestHTTPVendorSend(t *testing.T) {
	t.Run("posts the send request", func(t *testing.T) {
		var got SendRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/vender/send", r.URL.Path)
			_ = json.NewDecoder(r.Body).Decode(&got)
			_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
		}))
		defer srv.Close()

		v := NewHTTPVendor(srv.URL, "/vender/send", 1000, 3, 1000)
		err := v.Send(context.Background(), "log-1", "cust-1", "Hi Ali!")
		require.NoError(t, err)
		assert.Equal(t, SendRequest{LogID: "log-1", CustomerID: "cust-1", Message: "Hi Ali!"}, got)
	})

	t.Run("non-2xx is a VendorError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		v := NewHTTPVendor(srv.URL, "/vender/send", 1000, 10, 1000)
		err := v.Send(context.Background(), "log-1", "cust-1", "msg")
		require.Error(t, err)
		var ve *errs.VendorError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("breaker opens after consecutive failures", func(t *testing.T) {
		var hits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		v := NewHTTPVendor(srv.URL, "/vender/send", 1000, 2, 60000)

		_ = v.Send(context.Background(), "l1", "c1", "m")
		_ = v.Send(context.Background(), "l2", "c2", "m")
		// breaker now open: this one must be rejected without an HTTP call
		err := v.Send(context.Background(), "l3", "c3", "m")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "breaker open")
		assert.Equal(t, int64(2), hits.Load())
	})

	t.Run("breaker recovers through a probe", func(t *testing.T) {
		var failing atomic.Bool
		failing.Store(true)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if failing.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]bool{"success": true})
		}))
		defer srv.Close()

		v := NewHTTPVendor(srv.URL, "/vender/send", 1000, 1, 10)

		require.Error(t, v.Send(context.Background(), "l1", "c1", "m"))

		failing.Store(false)
		time.Sleep(20 * time.Millisecond) // let the open window lapse

		assert.NoError(t, v.Send(context.Background(), "l2", "c2", "m"))
		assert.NoError(t, v.Send(context.Background(), "l3", "c3", "m"))
	})
}
