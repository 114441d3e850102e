package migrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "github.com/tursodatabase/go-libsql"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file:"+filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.up.sql":   {Data: []byte("CREATE TABLE b (id INTEGER)")},
		"001_first.up.sql":    {Data: []byte("CREATE TABLE a (id INTEGER)")},
		"001_first.down.sql":  {Data: []byte("DROP TABLE a")},
		"README.md":           {Data: []byte("ignored")},
		"003_broken.down.sql": {Data: []byte("orphan down")},
	}

	got, err := Load(fsys)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(got))
	}
	if got[0].Version != 1 || got[0].Name != "first" || got[0].DownSQL != "DROP TABLE a" {
		t.Errorf("first migration = %+v", got[0])
	}
	if got[1].Version != 2 || got[1].DownSQL != "" {
		t.Errorf("second migration = %+v", got[1])
	}
}

func TestRunner_UpAndDown(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	r, err := NewRunner(db, nil)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}

	applied, err := r.Up(ctx)
	if err != nil {
		t.Fatalf("Up failed: %v", err)
	}
	if applied != r.Latest() {
		t.Errorf("applied %d, want %d", applied, r.Latest())
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO assignments (key, value, updated_at) VALUES ('k', 'A', 'now')`); err != nil {
		t.Fatalf("assignments table missing: %v", err)
	}

	again, err := r.Up(ctx)
	if err != nil || again != 0 {
		t.Errorf("second Up = %d, %v; want 0, nil", again, err)
	}

	if err := r.To(ctx, 0); err != nil {
		t.Fatalf("To(0) failed: %v", err)
	}
	version, dirty, err := r.Version(ctx)
	if err != nil || version != 0 || dirty {
		t.Errorf("Version = %d, %v, %v", version, dirty, err)
	}
	if _, err := db.ExecContext(ctx, `SELECT 1 FROM assignments`); err == nil {
		t.Error("assignments table should be dropped")
	}
}

func TestRunner_RefusesDirtyDatabase(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	r, err := NewRunner(db, nil)
	if err != nil {
		t.Fatalf("NewRunner failed: %v", err)
	}
	if err := r.ensureTable(ctx); err != nil {
		t.Fatalf("ensureTable failed: %v", err)
	}
	if err := r.setVersion(ctx, 1, true); err != nil {
		t.Fatalf("setVersion failed: %v", err)
	}

	if _, err := r.Up(ctx); err == nil {
		t.Fatal("expected dirty state error")
	}
}
