// Package pg wires the PostgreSQL layer of the service: pooled connectivity
// via pgx/v5, schema migrations via goose/v3, and a health check suitable for
// readiness endpoints.
//
// Connect retries with a linear back-off so that the service survives a
// database that is still coming up. Migrate bridges the pgx pool into the
// database/sql interface goose expects and routes goose output through the
// application logger.
//
// Query-level error classification lives in the helpers IsNotFoundError and
// IsDuplicateKeyError so business code never matches on SQLSTATE strings.
package pg
