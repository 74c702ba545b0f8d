package testdb

import (
	"net/url"
	"os"

	"github.com/phrazzld/vocab-review/internal/redact"
)

// Environment variables consulted for the test database URL, in order.
const (
	EnvDatabaseURL     = "DATABASE_URL"
	EnvTestDatabaseURL = "VOCAB_TEST_DB_URL"
)

// IsIntegrationTestEnvironment reports whether a test database is configured.
func IsIntegrationTestEnvironment() bool {
	return GetTestDatabaseURL() != ""
}

// ShouldSkipDatabaseTest is the inverse of IsIntegrationTestEnvironment.
func ShouldSkipDatabaseTest() bool {
	return !IsIntegrationTestEnvironment()
}

// GetTestDatabaseURL returns the first non-empty database URL variable.
func GetTestDatabaseURL() string {
	for _, name := range []string{EnvDatabaseURL, EnvTestDatabaseURL} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// MaskDatabaseURL hides the password of dbURL for test output. Values that
// do not parse as URLs are passed through the redactor instead.
func MaskDatabaseURL(dbURL string) string {
	if dbURL == "" {
		return ""
	}
	u, err := url.Parse(dbURL)
	if err != nil {
		return redact.String(dbURL)
	}
	return u.Redacted()
}
