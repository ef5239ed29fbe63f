// Package analytics computes on-demand aggregate views over the ingested
// event log.
//
// # Overview
//
// The service recomputes every aggregate from the full event collection on
// each call (O(n) in event count) and keeps no incremental state; the store
// hands it a snapshot, so results are consistent with a single point in
// time even under concurrent ingestion.
//
// Aggregates:
//   - Overview: total event count, rolling last-24h count, and a frequency
//     table keyed by event name
//   - TopEvent: the (name, count) pair with the maximum count, ties broken
//     by first-seen ingest order
//   - Answer: the chat-analysis reply string built from TopEvent
package analytics
