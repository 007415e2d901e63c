package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestDSN(t *testing.T) {
	cases := []struct {
		path, driver, want string
	}{
		{"f.db", DriverModernc, "f.db?_pragma=busy_timeout(5000)"},
		{"f.db?mode=ro", DriverModernc, "f.db?mode=ro&_pragma=busy_timeout(5000)"},
		{"f.db", DriverMattn, "f.db?_busy_timeout=5000"},
	}
	for _, c := range cases {
		if got := NewWithDriver(c.path, c.driver).dsn(); got != c.want {
			t.Fatalf("dsn(%q, %q) = %q, want %q", c.path, c.driver, got, c.want)
		}
	}
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()
	a := New(filepath.Join(t.TempDir(), "catalog.db"))

	db, err := a.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()

	// Migrate is repeatable.
	for i := 0; i < 2; i++ {
		if err := a.Migrate(ctx, db); err != nil {
			t.Fatalf("migrate #%d: %v", i, err)
		}
	}

	var version string
	if err := db.QueryRowContext(ctx, a.SQL().GetMeta, "catalog_version").Scan(&version); err != nil {
		t.Fatalf("get meta: %v", err)
	}
	if version != "1" {
		t.Fatalf("catalog_version = %q", version)
	}
}
