//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Schema applied to every test database. Kept in one place so integration
// suites and the deployment migrations cannot drift silently.
const Schema = `
CREATE TABLE IF NOT EXISTS licence_holders (
    licence_number TEXT PRIMARY KEY,
    full_name      TEXT NOT NULL,
    phone          TEXT NOT NULL,
    address        TEXT NOT NULL DEFAULT '',
    points         INT  NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS officers (
    officer_number TEXT PRIMARY KEY,
    full_name      TEXT NOT NULL,
    phone          TEXT NOT NULL,
    station        TEXT NOT NULL DEFAULT '',
    rank           TEXT NOT NULL DEFAULT '',
    points         INT  NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL,
    updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS rules (
    id         UUID PRIMARY KEY,
    section    TEXT NOT NULL,
    provision  TEXT NOT NULL,
    fine       BIGINT NOT NULL,
    points     INT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS violations (
    id              UUID PRIMARY KEY,
    licence_number  TEXT NOT NULL,
    holder_name     TEXT NOT NULL,
    officer_number  TEXT NOT NULL,
    officer_name    TEXT NOT NULL,
    phone           TEXT NOT NULL,
    vehicle_number  TEXT NOT NULL,
    location        TEXT NOT NULL,
    rule_id         UUID NOT NULL,
    rule_section    TEXT NOT NULL,
    rule_provision  TEXT NOT NULL,
    rule_fine       BIGINT NOT NULL,
    rule_points     INT NOT NULL,
    notes           TEXT NOT NULL DEFAULT '',
    occurred_at     TIMESTAMPTZ NOT NULL,
    status          TEXT NOT NULL,
    payment_status  TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS verification_challenges (
    licence_number TEXT NOT NULL,
    phone          TEXT NOT NULL,
    code           TEXT NOT NULL,
    created_at     TIMESTAMPTZ NOT NULL,
    expires_at     TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (licence_number, phone)
);

CREATE TABLE IF NOT EXISTS accounts (
    id            UUID PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    full_name     TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL,
    status        TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_outbox (
    id           UUID PRIMARY KEY,
    kind         TEXT NOT NULL,
    actor        TEXT NOT NULL DEFAULT '',
    subject      TEXT NOT NULL,
    detail       JSONB,
    created_at   TIMESTAMPTZ NOT NULL,
    published_at TIMESTAMPTZ
);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// project schema applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DB        *sql.DB
}

// NewPostgresContainer starts a PostgreSQL container, applies the schema, and
// returns a connected database handle. Terminated when the test finishes.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("trafix_test"),
		tcpostgres.WithUsername("trafix"),
		tcpostgres.WithPassword("trafix"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, DB: db}
}

// TruncateTables clears the given tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := p.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE %s", strings.Join(tables, ", ")))
	return err
}
