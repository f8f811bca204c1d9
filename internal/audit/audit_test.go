package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/deviceservice/internal/infrastructure/config"
	"github.com/nerrad567/deviceservice/internal/infrastructure/database"
	"github.com/nerrad567/deviceservice/internal/infrastructure/logging"
	"github.com/nerrad567/deviceservice/internal/reconcile"
	"github.com/nerrad567/deviceservice/internal/resource"
	"github.com/nerrad567/deviceservice/migrations"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "audit.db"),
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestCreateAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	capacity := int32(2)

	entries := []*Entry{
		{Kind: "Asset", Namespace: "azure-iot-operations", Name: "onvif-asset-1a2b3c4d", Action: "created",
			LookupFailure: "not_found", CreatedAt: base},
		{Kind: "CronTab", Namespace: "newcr-with-instance", Name: "job", Action: "updated",
			Capacity: &capacity, DurationMS: 12, CreatedAt: base.Add(time.Second)},
		{Kind: "CronTab", Namespace: "newcr-with-instance", Name: "job", Action: "failed",
			Error: "connection refused", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if e.ID == "" {
			t.Error("Create() did not assign an ID")
		}
	}

	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all.Total != 3 || len(all.Entries) != 3 || all.Limit != defaultLimit {
		t.Fatalf("List() = total %d, %d entries, limit %d", all.Total, len(all.Entries), all.Limit)
	}
	if all.Entries[0].Action != "failed" || all.Entries[0].Error != "connection refused" {
		t.Errorf("newest entry = %+v", all.Entries[0])
	}
	if c := all.Entries[1].Capacity; c == nil || *c != 2 {
		t.Errorf("updated entry capacity = %v, want 2", c)
	}
	if all.Entries[2].LookupFailure != "not_found" || all.Entries[2].Capacity != nil {
		t.Errorf("asset entry = %+v", all.Entries[2])
	}

	crontabs, err := repo.List(ctx, Filter{Kind: "CronTab", Action: "updated"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if crontabs.Total != 1 || crontabs.Entries[0].DurationMS != 12 {
		t.Errorf("filtered List() = %+v", crontabs)
	}
}

func TestList_Paging(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.Create(ctx, &Entry{Kind: "Asset", Namespace: "ns", Name: "a", Action: "unchanged"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	page, err := repo.List(ctx, Filter{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 5 || len(page.Entries) != 1 {
		t.Errorf("page = total %d, %d entries, want 5 and 1", page.Total, len(page.Entries))
	}

	clamped, err := repo.List(ctx, Filter{Limit: 1000, Offset: -3})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if clamped.Limit != maxLimit || clamped.Offset != 0 {
		t.Errorf("clamped = limit %d offset %d", clamped.Limit, clamped.Offset)
	}
}

func TestRecorder_ObserveReconcile(t *testing.T) {
	repo := newTestRepo(t)
	rec := NewRecorder(repo, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // the write must survive a finished request

	rec.ObserveReconcile(ctx, reconcile.Outcome{
		Kind:          resource.KindCronTab,
		Namespace:     "newcr-no-instance",
		Name:          "newcr-no-instance-1",
		Action:        reconcile.ActionCreated,
		LookupFailure: resource.LookupNotFound,
		Capacity:      1,
		Duration:      3 * time.Millisecond,
		At:            time.Now(),
	})

	got, err := repo.List(context.Background(), Filter{Name: "newcr-no-instance-1"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got.Total != 1 {
		t.Fatalf("entries = %d, want 1", got.Total)
	}
	e := got.Entries[0]
	if e.Kind != "CronTab" || e.Action != "created" || e.LookupFailure != "not_found" || e.DurationMS != 3 {
		t.Errorf("entry = %+v", e)
	}
	if e.Capacity == nil || *e.Capacity != 1 {
		t.Errorf("capacity = %v, want 1", e.Capacity)
	}
}

func TestEntryFromOutcome(t *testing.T) {
	e := EntryFromOutcome(reconcile.Outcome{
		Kind:   resource.KindAsset,
		Action: reconcile.ActionFailed,
		Err:    errors.New("forbidden"),
	})
	if e.Kind != "Asset" || e.Error != "forbidden" || e.Capacity != nil {
		t.Errorf("EntryFromOutcome() = %+v", e)
	}
}

// failingRepo always fails to write.
type failingRepo struct{}

func (failingRepo) Create(context.Context, *Entry) error { return errors.New("disk full") }
func (failingRepo) List(context.Context, Filter) (*ListResult, error) {
	return nil, errors.New("disk full")
}

func TestRecorder_WriteFailureIsSwallowed(t *testing.T) {
	rec := NewRecorder(failingRepo{}, logging.Discard())
	rec.ObserveReconcile(context.Background(), reconcile.Outcome{Kind: resource.KindAsset, At: time.Now()})
}
