package store

import "github.com/jpalmerr/pulsecheck"

// Store defines the interface for keeping and subscribing to run reports.
//
// Store implementations must be safe for concurrent access. The pub/sub
// mechanism allows reports to be pushed to connected clients (e.g., via
// Server-Sent Events) as runs complete.
type Store interface {
	// Update replaces the latest report and notifies all subscribers.
	Update(report pulsecheck.Report)

	// Latest returns the most recent report. The second value is false
	// until the first Update.
	Latest() (pulsecheck.Report, bool)

	// Subscribe returns a channel that receives every new report.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan pulsecheck.Report

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan pulsecheck.Report)
}
