package database

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL for the profile and media tables.
func Schema() string {
	return schemaSQL
}

// EnsureSchema applies the idempotent DDL. Migration history is owned elsewhere;
// this only guarantees the tables this service touches exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
