// Package session implements the credential store keyed by session and platform.
//
// The [Store] interface decouples the OAuth flow controller and the broadcast
// coordinator from any specific storage mechanism. Two implementations exist:
//
//   - [MemoryStore] : mutex-guarded map scoped to the process lifetime. This is
//     the default and matches the tool's single-operator scope: disconnecting or
//     restarting the server discards all credentials.
//   - [SQLiteStore] : same contract backed by SQLite for operators who want
//     connections to survive restarts. Selected via the session.database_path
//     config key.
//
// Both implementations are safe under concurrent requests for the same session.
package session
