// Package sqlite provides durable client state on modernc.org/sqlite, a pure
// Go SQLite implementation. A single database connection backs:
//
//   - SessionStore: credential, account email and active organization
//   - CategoryStore: the category set
//   - SchedulerStore: background task state and run history
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.kbsync/data/kbsync.db
package sqlite
