// Package postgres implements the internal/store interfaces on PostgreSQL
// through database/sql and the pgx driver, and ships the embedded goose
// migrations that create the review schema.
package postgres
