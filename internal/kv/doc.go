// Package kv provides the durable key/value layer behind storefront stores.
//
// An Adapter wraps a Backend (memory, SQLite or Redis) and offers typed
// Load/Save/Remove with JSON serialization. Persistence is best-effort:
//
//   - Load never fails. A missing key yields the caller's default; a payload
//     that cannot be parsed, or that fails its Schema, is logged, discarded
//     and replaced by the default.
//   - Save and Remove never fail. Backend errors (quota exceeded, storage
//     disabled, network down) are logged and swallowed; the caller's
//     in-memory state stays authoritative for the rest of the session.
//   - After repeated write failures a circuit breaker suspends writes for a
//     cooldown period instead of retrying on every mutation.
//
// # Payload Format
//
// Values are stored inside a versioned envelope:
//
//	{"schemaVersion":1,"data":[{"id":"zinc","quantity":3}]}
//
// Bare payloads written without an envelope are read as version 0. A payload
// whose schemaVersion is newer than SchemaVersion is treated as absent and
// left in place.
package kv
