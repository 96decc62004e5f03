package migrations

import (
	"strings"
	"testing"
)

// Every up migration must have a matching down migration.
func TestMigrationPairsComplete(t *testing.T) {
	entries, err := FS.ReadDir(".")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	for base := range ups {
		if !downs[base] {
			t.Errorf("missing down migration for %s", base)
		}
	}
	for base := range downs {
		if !ups[base] {
			t.Errorf("missing up migration for %s", base)
		}
	}
}

// The reminders table must carry every column the repository reads and
// writes, including the bookkeeping columns touched on status changes.
func TestRemindersTableColumns(t *testing.T) {
	ddl, err := FS.ReadFile("000006_create_reminders.up.sql")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for _, col := range []string{
		"id", "appointment_id", "send_at", "status",
		"attempts", "payload", "created_at", "updated_at",
	} {
		if !strings.Contains(string(ddl), col) {
			t.Errorf("reminders DDL missing column %q", col)
		}
	}
}
