// Package database provides SQLite-based run history for pressgen.
//
// Every pipeline run is stored with its outcome, remote id, link and a
// fingerprint of the published markup, plus the full run as JSON. The
// history command lists it, and the publish command uses the last
// fingerprint to report whether a republish changed anything.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Concurrent page runs write through one connection without extra locking
package database
