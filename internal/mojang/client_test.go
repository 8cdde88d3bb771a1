// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LimboGate Contributors

package mojang_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limbogate/limbogate/internal/mojang"
)

// newProfileServer serves the given status codes in order, repeating
// the last one, and counts requests.
func newProfileServer(t *testing.T, codes ...int) (*mojang.Client, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := requests.Add(1)
		idx := int(n) - 1
		if idx >= len(codes) {
			idx = len(codes) - 1
		}
		w.WriteHeader(codes[idx])
	}))
	t.Cleanup(srv.Close)

	return mojang.NewClient(srv.URL+"/%s", nil), &requests
}

func TestHasPaidAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("profile found", func(t *testing.T) {
		client, requests := newProfileServer(t, http.StatusOK)
		status, err := client.HasPaidAccount(ctx, "notch")
		require.NoError(t, err)
		assert.Equal(t, mojang.StatusPremium, status)
		assert.Equal(t, int64(1), requests.Load())
	})

	t.Run("no content means no premium identity", func(t *testing.T) {
		client, _ := newProfileServer(t, http.StatusNoContent)
		status, err := client.HasPaidAccount(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, mojang.StatusNotFound, status)
	})

	t.Run("not found means no premium identity", func(t *testing.T) {
		client, _ := newProfileServer(t, http.StatusNotFound)
		status, err := client.HasPaidAccount(ctx, "nobody")
		require.NoError(t, err)
		assert.Equal(t, mojang.StatusNotFound, status)
	})

	t.Run("rate limit is surfaced without retrying", func(t *testing.T) {
		client, requests := newProfileServer(t, http.StatusTooManyRequests, http.StatusOK)
		status, err := client.HasPaidAccount(ctx, "notch")
		require.NoError(t, err)
		assert.Equal(t, mojang.StatusRateLimited, status)
		assert.Equal(t, int64(1), requests.Load(), "a throttled endpoint must not be hammered")
	})

	t.Run("server errors are retried", func(t *testing.T) {
		client, requests := newProfileServer(t, http.StatusInternalServerError, http.StatusOK)
		status, err := client.HasPaidAccount(ctx, "notch")
		require.NoError(t, err)
		assert.Equal(t, mojang.StatusPremium, status)
		assert.Equal(t, int64(2), requests.Load())
	})

	t.Run("exhausted retries surface the error", func(t *testing.T) {
		client, requests := newProfileServer(t, http.StatusInternalServerError)
		status, err := client.HasPaidAccount(ctx, "notch")
		require.Error(t, err)
		assert.Equal(t, mojang.StatusRateLimited, status)
		assert.Equal(t, int64(4), requests.Load(), "initial attempt plus three retries")
	})

	t.Run("unreachable endpoint errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close()
		client := mojang.NewClient(srv.URL+"/%s", nil)

		_, err := client.HasPaidAccount(ctx, "notch")
		assert.Error(t, err)
	})
}
