package database

import (
	"strings"
	"testing"
	"time"
)

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for _, table := range []string{"accounts", "subscriptions", "transfers", "charges", "payment_intents"} {
		var n int
		err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&n)
		if err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if n != 1 {
			t.Errorf("table %s missing", table)
		}
	}
}

func TestStoredTimestampsReadableByStrftime(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	created := time.Date(2024, time.July, 15, 12, 0, 0, 0, time.UTC)
	if _, err := db.Exec(`INSERT INTO transfers (stripe_id, amount, created) VALUES (?, ?, ?)`, "tr_1", 100, created); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var raw, kind string
	var year, month *string
	err = db.QueryRow(
		`SELECT CAST(created AS TEXT), typeof(created), strftime('%Y', created), strftime('%m', created) FROM transfers WHERE stripe_id = ?`,
		"tr_1",
	).Scan(&raw, &kind, &year, &month)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if kind != "text" {
		t.Errorf("typeof(created) = %q, want text", kind)
	}
	if !strings.HasPrefix(raw, "2024-07-15 12:00:00") || strings.Contains(raw, "UTC") {
		t.Errorf("stored created = %q, want SQLite datetime text", raw)
	}
	if year == nil || *year != "2024" {
		t.Errorf("strftime year = %v, want 2024", year)
	}
	if month == nil || *month != "07" {
		t.Errorf("strftime month = %v, want 07", month)
	}

	var back time.Time
	if err := db.QueryRow(`SELECT created FROM transfers WHERE stripe_id = ?`, "tr_1").Scan(&back); err != nil {
		t.Fatalf("scan created: %v", err)
	}
	if !back.Equal(created) {
		t.Errorf("created = %v, want %v", back, created)
	}
}
