// Package notify fans configuration changes out to external sinks.
//
// The store's mutation path hands each change record to a Broadcaster,
// which enqueues it on an unbounded in-memory queue consumed by a single
// background worker. The worker delivers to every registered Sink. This
// keeps the synchronous mutation contract (Set returns when the entry is
// stored and listeners have run) decoupled from each sink's own
// concurrency model — a stalled WebSocket client or broker can never block
// a write.
//
// Two sinks ship with configcore:
//   - Hub: a WebSocket hub broadcasting to subscribed clients
//   - MQTTPublisher: publishes each event to an MQTT topic
//
// Sensitive values are masked before an event is enqueued; no sink ever
// sees them in cleartext.
package notify
