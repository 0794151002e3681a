package metrics

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/roomchat/internal/logging"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstruments(t *testing.T) {
	m := New()

	m.ObserveRequest("/svc/Append", "OK")
	m.ObserveRequest("/svc/Append", "OK")
	m.ObserveRequest("/svc/Append", "PermissionDenied")
	m.MessageAppended()
	m.MessageUpdated()
	m.WriteRateLimited()
	m.WatchStarted()
	m.WatchStarted()
	m.WatchEnded()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/svc/Append", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/svc/Append", "PermissionDenied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.appended))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.updated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.watchers))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("x", "OK")
		m.MessageAppended()
		m.MessageUpdated()
		m.WriteRateLimited()
		m.WatchStarted()
		m.WatchEnded()
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.MessageAppended()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "roomchat_messages_appended_total 1")
	assert.Contains(t, body, "roomchat_active_watchers 0")
}

func TestServe(t *testing.T) {
	m := New()
	ctx, cancel := context.WithCancel(context.Background())

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	orig := listen
	listen = func(string, string) (net.Listener, error) { return lis, nil }
	t.Cleanup(func() { listen = orig })

	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, "ignored", logging.Nop()) }()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + lis.Addr().String() + "/metrics")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.True(t, strings.Contains(body, "roomchat_grpc_requests_total") || strings.Contains(body, "go_goroutines"))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop")
	}
}

func TestServe_ListenError(t *testing.T) {
	orig := listen
	listen = func(string, string) (net.Listener, error) { return nil, errors.New("busy") }
	t.Cleanup(func() { listen = orig })

	err := New().Serve(context.Background(), ":0", logging.Nop())
	require.EqualError(t, err, "busy")
}
