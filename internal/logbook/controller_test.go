package logbook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/wicaksana/logbook/internal/model"
)

// fakeAPI is an in-memory API with injectable failures and an optional
// blocking gate for exercising the in-flight slot.
type fakeAPI struct {
	mu      sync.Mutex
	records []model.BackupRecord
	nextID  int
	fail    error
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeAPI) wait() {
	if f.gate != nil {
		if f.started != nil {
			select {
			case f.started <- struct{}{}:
			default:
			}
		}
		<-f.gate
	}
}

func (f *fakeAPI) List(ctx context.Context) ([]model.BackupRecord, error) {
	f.wait()
	if f.fail != nil {
		return nil, f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.BackupRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeAPI) Create(ctx context.Context, in model.RecordInput) (*model.BackupRecord, error) {
	f.wait()
	if f.fail != nil {
		return nil, f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec := model.BackupRecord{
		ID:           fmt.Sprintf("id-%d", f.nextID),
		Date:         in.Date,
		Month:        "Maret",
		Time:         in.Time,
		BackupNumber: in.BackupNumber,
		Performer:    in.Performer,
	}
	f.records = append(f.records, rec)
	return &rec, nil
}

func (f *fakeAPI) Update(ctx context.Context, id string, in model.RecordInput) (*model.BackupRecord, error) {
	f.wait()
	if f.fail != nil {
		return nil, f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].Date = in.Date
			f.records[i].Time = in.Time
			f.records[i].BackupNumber = in.BackupNumber
			f.records[i].Performer = in.Performer
			rec := f.records[i]
			return &rec, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	f.wait()
	if f.fail != nil {
		return f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

// captureNotifier records every notification for assertions.
type captureNotifier struct {
	mu            sync.Mutex
	notifications []Notification
}

func (n *captureNotifier) Notify(notification Notification) {
	n.mu.Lock()
	n.notifications = append(n.notifications, notification)
	n.mu.Unlock()
}

func (n *captureNotifier) last(t *testing.T) Notification {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notifications) == 0 {
		t.Fatal("expected a notification")
	}
	return n.notifications[len(n.notifications)-1]
}

func newTestController(api *fakeAPI) (*Controller, *captureNotifier) {
	notifier := &captureNotifier{}
	return New(api, notifier), notifier
}

func seedRecords() []model.BackupRecord {
	return []model.BackupRecord{
		{ID: "r1", Date: "2024-04-01", Month: "April", Time: "22:00", BackupNumber: "4", Performer: "Andi"},
		{ID: "r2", Date: "2024-03-15", Month: "Maret", Time: "23:00", BackupNumber: "3", Performer: "Budi"},
		{ID: "r3", Date: "2024-02-10", Month: "Februari", Time: "01:00", BackupNumber: "2", Performer: "Citra"},
	}
}

func TestLoadReplacesCache(t *testing.T) {
	api := &fakeAPI{records: seedRecords()}
	c, _ := newTestController(api)

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	records := c.Records()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if c.State() != StateIdle {
		t.Error("expected idle state after load")
	}
}

func TestLoadFailureKeepsCache(t *testing.T) {
	api := &fakeAPI{records: seedRecords()}
	c, notifier := newTestController(api)

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	api.fail = errors.New("server down")
	if err := c.Load(context.Background()); err == nil {
		t.Fatal("expected error from failed load")
	}

	if len(c.Records()) != 3 {
		t.Error("cache should be untouched on load failure")
	}
	got := notifier.last(t)
	if got.Level != LevelError || got.Message != "Gagal mengambil data dari server" {
		t.Errorf("notification = %+v", got)
	}
	if c.State() != StateIdle {
		t.Error("expected idle state after failed load")
	}
}

func TestSubmitCreateAppends(t *testing.T) {
	api := &fakeAPI{}
	c, notifier := newTestController(api)

	err := c.Submit(context.Background(), model.RecordInput{
		Date: "2024-03-15", Time: "22:00", BackupNumber: "3", Performer: "Andi",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	records := c.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ID == "" {
		t.Error("expected server-assigned id in cache")
	}
	if got := notifier.last(t); got.Message != "Data backup berhasil ditambahkan" {
		t.Errorf("notification = %+v", got)
	}
	if c.ShowForm() {
		t.Error("form should close after successful submit")
	}
}

func TestSubmitUpdateSplicesByID(t *testing.T) {
	api := &fakeAPI{records: seedRecords()}
	c, notifier := newTestController(api)
	c.Load(context.Background())

	if !c.BeginEdit("r2") {
		t.Fatal("expected to find r2 in cache")
	}
	if c.Editing() == nil || c.Editing().ID != "r2" {
		t.Fatal("expected r2 as edit target")
	}

	err := c.Submit(context.Background(), model.RecordInput{
		Date: "2024-05-20", Time: "02:00", BackupNumber: "5", Performer: "Dewi",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	records := c.Records()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for _, r := range records {
		if r.ID == "r2" {
			if r.Performer != "Dewi" || r.Date != "2024-05-20" {
				t.Errorf("r2 not reconciled: %+v", r)
			}
		} else if r.Performer == "Dewi" {
			t.Errorf("wrong record changed: %+v", r)
		}
	}
	if c.Editing() != nil {
		t.Error("edit target should clear after successful submit")
	}
	if got := notifier.last(t); got.Message != "Data backup berhasil diperbarui" {
		t.Errorf("notification = %+v", got)
	}
}

func TestSubmitFailureLeavesCacheAndClearsLoading(t *testing.T) {
	api := &fakeAPI{records: seedRecords()}
	c, notifier := newTestController(api)
	c.Load(context.Background())

	api.fail = errors.New("boom")
	err := c.Submit(context.Background(), model.RecordInput{
		Date: "2024-05-20", Time: "02:00", BackupNumber: "5", Performer: "Dewi",
	})
	if err == nil {
		t.Fatal("expected error")
	}

	if len(c.Records()) != 3 {
		t.Error("cache should be untouched on submit failure")
	}
	if got := notifier.last(t); got.Message != "Gagal menyimpan data" {
		t.Errorf("notification = %+v", got)
	}
	if c.State() != StateIdle {
		t.Error("loading must clear even on failure")
	}
}

func TestSecondMutationWhileInFlightIsRejected(t *testing.T) {
	api := &fakeAPI{gate: make(chan struct{}), started: make(chan struct{}, 1)}
	c, _ := newTestController(api)

	done := make(chan error, 1)
	go func() {
		done <- c.Submit(context.Background(), model.RecordInput{
			Date: "2024-03-15", Time: "22:00", BackupNumber: "3", Performer: "Andi",
		})
	}()

	// Wait until the first call holds the in-flight slot.
	<-api.started
	if c.State() != StateLoading {
		t.Fatal("expected loading state while the call is in flight")
	}

	if err := c.Load(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("concurrent load err = %v, want ErrBusy", err)
	}
	if err := c.ConfirmDelete(context.Background()); err != nil {
		// No dialog open, so this is a no-op rather than ErrBusy.
		t.Errorf("confirm delete err = %v, want nil", err)
	}

	close(api.gate)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if c.State() != StateIdle {
		t.Error("expected idle after in-flight call finished")
	}
}

func TestDeleteFlow(t *testing.T) {
	api := &fakeAPI{records: seedRecords()}
	c, notifier := newTestController(api)
	c.Load(context.Background())

	c.RequestDelete("r1")
	if dialog := c.DeleteDialog(); !dialog.Open || dialog.TargetID != "r1" {
		t.Fatalf("dialog = %+v", dialog)
	}
	// Nothing mutated yet.
	if len(c.Records()) != 3 {
		t.Fatal("request delete must not mutate the cache")
	}

	if err := c.ConfirmDelete(context.Background()); err != nil {
		t.Fatalf("confirm delete: %v", err)
	}

	records := c.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, r := range records {
		if r.ID == "r1" {
			t.Error("deleted record still cached")
		}
	}
	if dialog := c.DeleteDialog(); dialog.Open {
		t.Error("dialog should close after confirm")
	}
	if got := notifier.last(t); got.Message != "Data backup berhasil dihapus" {
		t.Errorf("notification = %+v", got)
	}
}

func TestDeleteFailureLeavesCacheAndClosesDialog(t *testing.T) {
	api := &fakeAPI{records: seedRecords()}
	c, notifier := newTestController(api)
	c.Load(context.Background())

	c.RequestDelete("r1")
	api.fail = errors.New("boom")

	if err := c.ConfirmDelete(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if len(c.Records()) != 3 {
		t.Error("cache should be untouched on delete failure")
	}
	if dialog := c.DeleteDialog(); dialog.Open {
		t.Error("dialog should close even on failure")
	}
	if got := notifier.last(t); got.Message != "Gagal menghapus data" {
		t.Errorf("notification = %+v", got)
	}
	if c.State() != StateIdle {
		t.Error("loading must clear even on failure")
	}
}

func TestCancelDelete(t *testing.T) {
	api := &fakeAPI{records: seedRecords()}
	c, _ := newTestController(api)
	c.Load(context.Background())

	c.RequestDelete("r1")
	c.CancelDelete()

	if err := c.ConfirmDelete(context.Background()); err != nil {
		t.Fatalf("confirm after cancel: %v", err)
	}
	if len(c.Records()) != 3 {
		t.Error("cancelled delete must not mutate the cache")
	}
}

func TestVisibleFilter(t *testing.T) {
	api := &fakeAPI{records: seedRecords()}
	c, _ := newTestController(api)
	c.Load(context.Background())

	cases := []struct {
		name string
		term string
		want []string
	}{
		{"empty term returns all", "", []string{"r1", "r2", "r3"}},
		{"performer case-insensitive", "andi", []string{"r1"}},
		{"performer partial", "Bud", []string{"r2"}},
		{"backup number substring", "3", []string{"r2"}},
		{"short date substring", "Mar 2024", []string{"r2"}},
		{"short date day", "10 Feb", []string{"r3"}},
		{"no match", "zzz", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c.SetSearchTerm(tc.term)
			visible := c.Visible()
			if len(visible) != len(tc.want) {
				t.Fatalf("got %d records, want %d", len(visible), len(tc.want))
			}
			for i, id := range tc.want {
				if visible[i].ID != id {
					t.Errorf("visible[%d].ID = %q, want %q", i, visible[i].ID, id)
				}
			}
		})
	}

	// The filter never mutates the cache.
	if len(c.Records()) != 3 {
		t.Error("search filter mutated the cache")
	}
}

func TestBeginEditMissingRecord(t *testing.T) {
	api := &fakeAPI{}
	c, _ := newTestController(api)

	if c.BeginEdit("missing") {
		t.Error("expected BeginEdit to report missing record")
	}
	if c.ShowForm() {
		t.Error("form should stay closed for missing record")
	}
}

func TestExportEmptyVisibleSetWarns(t *testing.T) {
	api := &fakeAPI{}
	c, notifier := newTestController(api)

	err := c.Export(t.TempDir() + "/out.xlsx")
	if err == nil {
		t.Fatal("expected error for empty export")
	}
	if got := notifier.last(t); got.Level != LevelWarning {
		t.Errorf("notification = %+v, want warning", got)
	}
}

func TestExportVisibleSet(t *testing.T) {
	api := &fakeAPI{records: seedRecords()}
	c, notifier := newTestController(api)
	c.Load(context.Background())
	c.SetSearchTerm("Andi")

	path := t.TempDir() + "/out.xlsx"
	if err := c.Export(path); err != nil {
		t.Fatalf("export: %v", err)
	}
	if got := notifier.last(t); got.Level != LevelSuccess {
		t.Errorf("notification = %+v, want success", got)
	}
}
