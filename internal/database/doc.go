// Package database provides SQLite-based storage for mirror run history.
//
// Each completed run is recorded with its per-page outcomes, so earlier
// mirrors can be compared against later ones (which pages appeared, which
// started failing, whether content hashes changed).
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
