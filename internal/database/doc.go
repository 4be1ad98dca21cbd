// Package database provides connection pool management and schema
// migrations for the Postgres events store.
package database
