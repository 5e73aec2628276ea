package persistence

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nozzlewatch/nozzlewatch/internal/domain"
	"github.com/nozzlewatch/nozzlewatch/internal/mask"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "app.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "app.db")

	for i := 0; i < 2; i++ {
		db, err := Open(ctx, path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		var version int
		if err := db.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&version); err != nil {
			t.Fatalf("read version: %v", err)
		}
		if version != len(migrations) {
			t.Fatalf("expected schema version %d, got %d", len(migrations), version)
		}
		_ = db.Close()
	}
}

func TestSettingsRepoEmptyDatabaseYieldsDefaults(t *testing.T) {
	repo := NewSettingsRepo(openTestDB(t))

	got, err := repo.LoadSettings(context.Background())
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if got != domain.DefaultPluginSettings() {
		t.Fatalf("expected defaults, got %+v", got)
	}
	has, err := repo.HasSettings(context.Background())
	if err != nil || has {
		t.Fatalf("expected no stored settings, got has=%v err=%v", has, err)
	}
}

func TestSettingsRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepo(openTestDB(t))

	var g mask.Grid
	g.Set(2, 2, true)
	want := domain.DefaultPluginSettings()
	want.Action = domain.ActionPause
	want.ImgSensitivity = 0.15
	want.MaxCount = 4
	want.EnableNotification = false
	want.DiscordWebhookURL = "https://discord.example/hook"
	want.MaskData = mask.Encode(g)

	if err := repo.SaveSettings(ctx, want); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	got, err := repo.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	want.MaxCount = 5
	if err := repo.SaveSettings(ctx, want); err != nil {
		t.Fatalf("overwrite settings: %v", err)
	}
	got, _ = repo.LoadSettings(ctx)
	if got.MaxCount != 5 {
		t.Fatalf("expected overwrite, got %d", got.MaxCount)
	}
}

func TestSettingsRepoMissingRowsKeepDefaults(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	if _, err := db.ExecContext(ctx, `INSERT INTO settings(key, value, updated_at) VALUES ('maxCount', '9', 0)`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := NewSettingsRepo(db).LoadSettings(ctx)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if got.MaxCount != 9 || got.CountTime != 300 || got.MaskData != mask.EmptyString() {
		t.Fatalf("unexpected settings: %+v", got)
	}
}

func TestSettingsRepoCorruptValue(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	if _, err := db.ExecContext(ctx, `INSERT INTO settings(key, value, updated_at) VALUES ('maxCount', '"many"', 0)`); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := NewSettingsRepo(db).LoadSettings(ctx); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestStatusRepoInsertListPrune(t *testing.T) {
	ctx := context.Background()
	repo := NewStatusRepo(openTestDB(t))
	base := time.UnixMilli(1_700_000_000_000)

	for i := 0; i < 5; i++ {
		if err := repo.Insert(ctx, domain.StatusSnapshot{
			Image:          "ignored",
			FailureCount:   i,
			AIStatus:       "Monitoring",
			CPUTemperature: 40 + float64(i),
			ReceivedAt:     base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	recent, err := repo.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 || recent[0].FailureCount != 4 || recent[1].FailureCount != 3 {
		t.Fatalf("unexpected recent rows: %+v", recent)
	}
	if recent[0].Image != "" || !recent[0].ReceivedAt.Equal(base.Add(4*time.Second)) {
		t.Fatalf("unexpected row contents: %+v", recent[0])
	}

	removed, err := repo.Prune(ctx, 3)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 rows removed, got %d", removed)
	}
	all, _ := repo.ListRecent(ctx, 10)
	if len(all) != 3 || all[2].FailureCount != 2 {
		t.Fatalf("expected newest 3 rows kept, got %+v", all)
	}
}

func TestClearDatabase(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	if err := NewSettingsRepo(db).SaveSettings(ctx, domain.DefaultPluginSettings()); err != nil {
		t.Fatalf("seed settings: %v", err)
	}
	if err := NewStatusRepo(db).Insert(ctx, domain.StatusSnapshot{ReceivedAt: time.Now()}); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	if err := ClearDatabase(ctx, db); err != nil {
		t.Fatalf("clear database: %v", err)
	}
	for _, table := range []string{"settings", "status_history"} {
		var count int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("expected %s empty, got %d rows", table, count)
		}
	}
	if err := ClearDatabase(ctx, nil); err == nil {
		t.Fatalf("expected error for nil db")
	}
}

func TestWriterQueueRetriesThenSucceeds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWriterQueue(nil, 4)
	w.retryStep = time.Millisecond
	w.Start(ctx)

	var attempts atomic.Int32
	w.Enqueue("flaky", func(context.Context) error {
		if attempts.Add(1) < 3 {
			return errors.New("database is locked")
		}

		return nil
	})
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if attempts.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestWriterQueueGivesUpAfterMaxAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWriterQueue(nil, 4)
	w.retryStep = time.Millisecond
	w.Start(ctx)

	var attempts, after atomic.Int32
	w.Enqueue("broken", func(context.Context) error {
		attempts.Add(1)

		return errors.New("disk full")
	})
	w.Enqueue("next", func(context.Context) error {
		after.Add(1)

		return nil
	})
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if attempts.Load() != writerMaxAttempts || after.Load() != 1 {
		t.Fatalf("unexpected attempts: broken=%d next=%d", attempts.Load(), after.Load())
	}
}
