//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"hotel_bookings/internal/domain"
	mysqlrepo "hotel_bookings/internal/storage/mysql"
)

// migrationsDir honours MIGRATIONS_DIR and falls back to the repo copy.
func migrationsDir() string {
	if v := os.Getenv("MIGRATIONS_DIR"); v != "" {
		return v
	}
	return filepath.Join("..", "..", "..", "migrations")
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := migrationsDir()

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir %s: %v", dir, err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest unavailable: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=bookings",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("root:root@tcp(127.0.0.1:%s)/bookings?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		resource.GetPort("3306/tcp"))

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRepo_MySQL_InsertAndList(t *testing.T) {
	db := startMySQL(t)
	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a1", "b2", "c3"} {
		p := domain.Prediction{
			ID:              id,
			Label:           i % 2,
			ProbNotCanceled: 0.7,
			ProbCanceled:    0.3,
			Input:           []byte(fmt.Sprintf(`{"lead_time":%d}`, i)),
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.InsertPrediction(ctx, p); err != nil {
			t.Fatalf("InsertPrediction %s: %v", id, err)
		}
	}

	page, err := repo.ListPredictions(ctx, 2)
	if err != nil {
		t.Fatalf("ListPredictions: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.Items[0].ID != "c3" || page.Items[1].ID != "b2" {
		t.Fatalf("expected newest first, got %s, %s", page.Items[0].ID, page.Items[1].ID)
	}
	if !page.Items[0].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("created_at = %v", page.Items[0].CreatedAt)
	}
	if len(page.Items[0].Input) == 0 {
		t.Fatalf("input should round-trip")
	}

	if err := repo.InsertPrediction(ctx, domain.Prediction{ID: "a1", CreatedAt: base}); err == nil {
		t.Fatalf("expected duplicate id to fail")
	}
}
