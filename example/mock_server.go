package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"
)

// mockState counts requests for one svc/env pair.
type mockState struct {
	requests int
}

// startMockHealthServer runs a mock health endpoint until ctx is cancelled
// and returns its base URL.
//
// Behaviour per ?svc= value:
//   - "users": always 200
//   - "orders": 503 for the first two GETs of each env, then 200 (recovers on retry)
//   - "legacy": rejects HEAD with 405, answers GET with 200 (method fallback)
//   - "billing": always 500
func startMockHealthServer(ctx context.Context) (string, error) {
	var (
		states = make(map[string]*mockState)
		mu     sync.Mutex
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		svc := r.URL.Query().Get("svc")
		env := r.URL.Query().Get("env")
		key := svc + "-" + env

		mu.Lock()
		state, exists := states[key]
		if !exists {
			state = &mockState{}
			states[key] = state
		}
		state.requests++
		n := state.requests
		mu.Unlock()

		switch svc {
		case "legacy":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		case "orders":
			if n <= 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		case "billing":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mock server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	return "http://" + ln.Addr().String(), nil
}
