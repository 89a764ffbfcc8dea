package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleCheck runs every target once and answers with the envelope.
// The run is detached from the caller's connection; a client that hangs
// up early does not cancel it. Shutdown waits for it up to shutdownTimeout.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	env := Execute(context.WithoutCancel(r.Context()), s.runner, s.alerter)
	if s.store != nil {
		s.store.Update(env.Report)
	}

	if env.Alert.Error != "" {
		s.logger.Error("check completed with alert failure",
			"run_id", env.Report.RunID,
			"error", env.Alert.Error,
		)
	}

	writeJSON(w, env.StatusCode(), env)
}

// handleReport returns the latest report of this process.
func (s *Server) handleReport(w http.ResponseWriter, _ *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no report yet"})
		return
	}
	report, ok := s.store.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "no report yet"})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleEvents streams reports via Server-Sent Events.
//
// The handler uses write deadlines to prevent goroutine leaks when clients are
// slow or disconnected. Without deadlines, a blocked Fprintf call would prevent
// the handler from detecting context cancellation or channel closure.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "events not available", http.StatusServiceUnavailable)
		return
	}
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)

	// track if write deadlines are supported (may not be for some ResponseWriter impls)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Debug("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "event: report\ndata: %s\n\n", data); err != nil {
			return err
		}

		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	// replay the latest report, if any
	if report, ok := s.store.Latest(); ok {
		data, err := json.Marshal(report)
		if err == nil {
			if err := writeAndFlush(data); err != nil {
				return
			}
		}
	} else if err := rc.Flush(); err != nil {
		return
	}

	for {
		select {
		case report, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(report)
			if err != nil {
				s.logger.Error("failed to encode report", "run_id", report.RunID, "error", err)
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// request context is derived from server context via BaseContext,
			// so this fires on both client disconnect AND server shutdown
			return
		}
	}
}
