// Package pg provides PostgreSQL connection pooling via pgx and schema
// migrations via goose.
package pg
