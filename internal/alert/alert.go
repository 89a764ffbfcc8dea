// Package alert notifies operators about down targets.
//
// A [Dispatcher] composes one [Message] from a report and fans it out to
// every configured [Sender]. Nothing is sent when every target is up.
// Delivery failures are reported to the caller as a single joined error and
// are never confused with the targets being down.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jpalmerr/pulsecheck"
)

// Message is a rendered notification.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a [Message] over one channel.
type Sender interface {
	// Name identifies the channel in logs and responses, e.g. "email".
	Name() string

	// Send delivers the message. It must respect ctx cancellation.
	Send(ctx context.Context, msg Message) error
}

// Outcome describes what a dispatch did.
type Outcome struct {
	// Attempted is true when there were down targets and at least one
	// channel to notify.
	Attempted bool `json:"attempted"`

	// Delivered lists the channels that accepted the message.
	Delivered []string `json:"delivered"`

	// Failed lists the channels that returned an error.
	Failed []string `json:"failed,omitempty"`
}

// Sent reports whether every attempted channel accepted the message.
func (o Outcome) Sent() bool {
	return o.Attempted && len(o.Failed) == 0
}

// Dispatcher sends alerts for reports with down targets.
type Dispatcher struct {
	senders       []Sender
	subjectPrefix string
	logger        *slog.Logger
}

// NewDispatcher creates a [Dispatcher]. Nil senders are ignored; with no
// senders Dispatch only logs.
func NewDispatcher(subjectPrefix string, logger *slog.Logger, senders ...Sender) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	active := make([]Sender, 0, len(senders))
	for _, s := range senders {
		if s != nil {
			active = append(active, s)
		}
	}

	return &Dispatcher{
		senders:       active,
		subjectPrefix: subjectPrefix,
		logger:        logger,
	}
}

// Channels returns the names of the configured senders.
func (d *Dispatcher) Channels() []string {
	names := make([]string, len(d.senders))
	for i, s := range d.senders {
		names[i] = s.Name()
	}
	return names
}

// Dispatch notifies every channel about the down targets of report.
//
// It returns a zero [Outcome] and nil when nothing is down. Otherwise every
// sender is tried, in order, even after a failure; the returned error joins
// all sender errors.
func (d *Dispatcher) Dispatch(ctx context.Context, report pulsecheck.Report) (Outcome, error) {
	outcome := Outcome{Delivered: []string{}}

	if len(report.Down) == 0 {
		return outcome, nil
	}

	if len(d.senders) == 0 {
		d.logger.Warn("targets down but no alert channel configured",
			"run_id", report.RunID,
			"down", report.Totals.Down,
		)
		return outcome, nil
	}

	msg := Compose(d.subjectPrefix, report)
	outcome.Attempted = true

	var errs []error
	for _, s := range d.senders {
		if err := s.Send(ctx, msg); err != nil {
			d.logger.Error("alert delivery failed",
				"run_id", report.RunID,
				"channel", s.Name(),
				"error", err,
			)
			outcome.Failed = append(outcome.Failed, s.Name())
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		d.logger.Info("alert delivered",
			"run_id", report.RunID,
			"channel", s.Name(),
			"down", report.Totals.Down,
		)
		outcome.Delivered = append(outcome.Delivered, s.Name())
	}

	if len(errs) > 0 {
		return outcome, fmt.Errorf("alert dispatch failed: %w", errors.Join(errs...))
	}
	return outcome, nil
}
