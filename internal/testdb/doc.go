// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Each test runs in its own transaction which is rolled back when the test
// finishes, so tests can run in parallel against the same schema without
// cleanup:
//
//	func TestSessionStore(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t) // skips when no database is configured
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        sessions := postgres.NewPostgresSessionStore(tx, nil)
//	        // ...
//	    })
//	}
//
// The database URL is read from DATABASE_URL, then VOCAB_TEST_DB_URL.
// GetTestDBWithT applies the embedded migrations once per test binary.
package testdb
