// Package event provides the types produced by the tracking scraper.
//
// A TrackingEvent is a single carrier-provided (datetime, description) pair.
// An Outcome is the per-code result handed back to callers, and a BatchResult
// groups the outcomes of one request in input order. Dedupe removes repeated
// events while keeping the order in which they were first seen.
package event
