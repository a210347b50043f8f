package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/josh-kwaku/dermapay-backend/internal/repository"
	"github.com/josh-kwaku/dermapay-backend/migrations"
)

// One container per test binary; the testcontainers reaper removes it when
// the process exits. Each test gets its own database inside it.
var (
	containerOnce sync.Once
	adminURL      string
	containerErr  error
)

func startContainer() {
	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("dermapay_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		containerErr = fmt.Errorf("start postgres container: %w", err)
		return
	}
	adminURL, containerErr = container.ConnectionString(ctx, "sslmode=disable")
}

// SetupTestDB returns a fresh, migrated database. Skipped under -short since
// it needs Docker.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	containerOnce.Do(startContainer)
	if containerErr != nil {
		t.Fatalf("%v", containerErr)
	}

	admin, err := sql.Open("postgres", adminURL)
	if err != nil {
		t.Fatalf("open admin db: %v", err)
	}
	defer admin.Close()

	name := "t_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.Exec("CREATE DATABASE " + name); err != nil {
		t.Fatalf("create database: %v", err)
	}

	dsn, err := url.Parse(adminURL)
	if err != nil {
		t.Fatalf("parse connection string: %v", err)
	}
	dsn.Path = "/" + name

	db, err := sql.Open("postgres", dsn.String())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		admin, err := sql.Open("postgres", adminURL)
		if err != nil {
			return
		}
		defer admin.Close()
		if _, err := admin.Exec("DROP DATABASE IF EXISTS " + name + " WITH (FORCE)"); err != nil {
			t.Logf("drop database %s: %v", name, err)
		}
	})

	if err := repository.Migrate(context.Background(), db, migrations.FS); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}
