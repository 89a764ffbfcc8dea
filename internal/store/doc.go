// Package store keeps the most recent report and fans new reports out to
// live subscribers.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//
// Nothing outlives the process. Subscribers receive updates via channels
// with non-blocking sends (slow subscribers miss updates rather than block
// the run that produced them).
package store
