// Package linkpub provides an embeddable client that shows a small set of
// externally curated links supplied by a remote dispenser service. Responses
// are cached in a persisted, time-bounded snapshot so that most page views
// never touch the network.
//
// This package contains domain types, interfaces and pure decision logic
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., http/, socket/,
// fs/, sqlite/). Orchestration lives in consume/.
package linkpub
