package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type slowHandler struct {
	started chan struct{}
	release chan struct{}
}

func (h *slowHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	close(h.started)
	<-h.release
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "[]")
}

func startServer(t *testing.T, timeout time.Duration) (*slowHandler, string, context.CancelFunc, <-chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	h := &slowHandler{started: make(chan struct{}), release: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, &http.Server{Handler: h}, ln, timeout, zap.NewNop())
	}()
	return h, "http://" + ln.Addr().String() + "/nft", cancel, done
}

func TestRunServerDrainsInFlightRequests(t *testing.T) {
	h, url, cancel, done := startServer(t, 5*time.Second)
	defer cancel()

	respErr := make(chan error, 1)
	go func() {
		resp, err := http.Get(url)
		if err == nil {
			_, err = io.ReadAll(resp.Body)
			resp.Body.Close()
		}
		respErr <- err
	}()

	<-h.started
	cancel()

	select {
	case err := <-done:
		t.Fatalf("runServer returned while a request was in flight: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	close(h.release)
	require.NoError(t, <-respErr)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runServer did not return after the request finished")
	}
}

func TestRunServerShutdownTimeout(t *testing.T) {
	h, url, cancel, done := startServer(t, 50*time.Millisecond)
	defer close(h.release)

	go func() {
		if resp, err := http.Get(url); err == nil {
			resp.Body.Close()
		}
	}()

	<-h.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("runServer ignored the shutdown timeout")
	}
}

func TestRunServerReportsServeError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	err = runServer(context.Background(), &http.Server{}, ln, time.Second, zap.NewNop())
	assert.Error(t, err)
}
