package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpotPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"109250.41000000"}`))
	}))
	defer srv.Close()

	price, err := NewClient(srv.URL).SpotPrice(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.InDelta(t, 109250.41, price, 1e-6)
}

func TestHourOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/klines", r.URL.Path)
		assert.Equal(t, "1h", r.URL.Query().Get("interval"))
		w.Write([]byte(`[[1725105600000,"109100.00000000","109400.12","108900.00","109250.41","53.2",1725109199999,"5810000.0",4521,"26.1","2850000.0","0"]]`))
	}))
	defer srv.Close()

	open, err := NewClient(srv.URL).HourOpen(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	assert.InDelta(t, 109100.0, open, 1e-6)
}

func TestHourOpenEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).HourOpen(context.Background(), "BTCUSDT")
	require.Error(t, err)
}

func TestSpotPriceHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SpotPrice(context.Background(), "BTCUSDT")
	require.Error(t, err)
}
