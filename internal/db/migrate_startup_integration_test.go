package db_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	dbfs "github.com/garnizeh/joboffers/db"
	"github.com/garnizeh/joboffers/internal/config"
	"github.com/garnizeh/joboffers/internal/db"
)

// TestMigrateOnStart_TempWorkdir runs the embedded migrations the way the
// server does at startup, against a database inside a temporary directory.
func TestMigrateOnStart_TempWorkdir(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	dbPath := filepath.Join(tmpDir, "test.db")
	cfgY := "addr: \":0\"\n" +
		"database_path: '" + dbPath + "'\n" +
		"migrate_on_start: true\n" +
		"password_hasher: md5\n"

	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfgY), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// allow the insecure default secret for this test
	t.Setenv("OFFERS_ENV", "development")
	t.Setenv("OFFERS_JWT_SECRET", "")

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}
	if !cfg.MigrateOnStart {
		t.Fatalf("expected migrate_on_start")
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, cfg.APITimeout)
	defer dbCancel()

	d, err := db.New(dbCtx, cfg.DatabasePath, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer d.Close()

	if err := db.Migrate(dbCtx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("scan schema_migrations count: %v", err)
	}
	if count == 0 {
		t.Fatalf("expected migrations recorded, got 0")
	}

	// offers go away with their owner
	res, err := d.Exec(ctx, `INSERT INTO users (username, password_hash, created) VALUES ('alice', 'x', 0)`)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	uid, _ := res.LastInsertId()
	if _, err := d.Exec(ctx, `INSERT INTO offers (user_id, title, description, skills_list, creation_date, modification_date) VALUES (?, 't', 'd', '[]', 0, 0)`, uid); err != nil {
		t.Fatalf("insert offer: %v", err)
	}
	if _, err := d.Exec(ctx, `DELETE FROM users WHERE id = ?`, uid); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM offers`).Scan(&count); err != nil {
		t.Fatalf("count offers: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected offers to cascade, got %d left", count)
	}
}
