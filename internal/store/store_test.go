// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"pagecraft/internal/database"
	"pagecraft/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "pagecraft")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "pagecraft")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testPage creates a throwaway page and removes it when the test ends.
func testPage(t *testing.T, db *sql.DB) *models.Page {
	t.Helper()
	p, err := NewPageStore(db).Create(context.Background(), &models.Page{
		Title: "Store Test",
		Slug:  "store-test-" + uuid.NewString()[:8],
		Type:  "page",
	})
	if err != nil {
		t.Fatalf("create test page: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM pages WHERE id = $1", p.ID) })
	return p
}

// testTerm creates a throwaway taxonomy term of kind.
func testTerm(t *testing.T, db *sql.DB, kind string) *models.TaxonomyTerm {
	t.Helper()
	suffix := uuid.NewString()[:8]
	term, err := NewTaxonomyStore(db).CreateTerm(context.Background(), kind, "Term "+suffix, "term-"+suffix)
	if err != nil {
		t.Fatalf("create test term: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM taxonomy_terms WHERE id = $1", term.ID) })
	return term
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Error("23505 should be a unique violation")
	}
	wrapped := errors.Join(errors.New("ctx"), &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(wrapped) {
		t.Error("wrapped 23505 should be a unique violation")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("23503 is not a unique violation")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Error("plain error is not a unique violation")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}) {
		t.Error("23503 should be a foreign key violation")
	}
	if IsForeignKeyViolation(nil) {
		t.Error("nil is not a foreign key violation")
	}
}

func TestNullJSON(t *testing.T) {
	if nullJSON(nil) != nil {
		t.Error("empty input should map to NULL")
	}
	if got := nullJSON([]byte(`{"a":1}`)); got != `{"a":1}` {
		t.Errorf("got %v", got)
	}
}

func TestBlockContentDefaultsToNull(t *testing.T) {
	if got := blockContent(nil); got != "null" {
		t.Errorf("blockContent(nil) = %q, want null", got)
	}
	if got := blockContent([]byte(`"x"`)); got != `"x"` {
		t.Errorf("blockContent = %q", got)
	}
}
