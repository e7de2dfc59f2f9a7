// Package kv provides the client's expiring key/value stores.
//
// Every entry carries the time it was written and an optional time-to-live.
// Reads never return an entry whose TTL has elapsed: backends that cannot
// expire entries on their own delete them lazily on the read that discovers
// them.
//
// # Backends
//
//   - SQLiteStore: on-disk table "kv" (see the migrations package), clock-driven
//     TTL, Update runs in one transaction.
//   - RedisStore: native Redis expiry (SET ... PX), Update runs in MULTI/EXEC.
//   - Nop: used when no persistent storage is available; every write is
//     dropped and every read reports absence.
package kv
