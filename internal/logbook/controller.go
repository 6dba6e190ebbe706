// Package logbook holds the client-side controller for the backup logbook:
// a cached copy of the record set plus the UI state that drives it.
//
// The cache is never authoritative. It is replaced wholesale by Load and
// reconciled by identifier after every mutation the server confirms; on any
// error it is left exactly as it was.
package logbook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wicaksana/logbook/internal/export"
	"github.com/wicaksana/logbook/internal/model"
	"github.com/wicaksana/logbook/internal/month"
)

// ErrBusy reports that a mutating call was rejected because another
// operation is still in flight. The controller holds a single in-flight
// slot, not a queue.
var ErrBusy = errors.New("logbook: operation already in flight")

const defaultCallTimeout = 15 * time.Second

// API is the server surface the controller drives. *client.Client
// satisfies it.
type API interface {
	List(ctx context.Context) ([]model.BackupRecord, error)
	Create(ctx context.Context, in model.RecordInput) (*model.BackupRecord, error)
	Update(ctx context.Context, id string, in model.RecordInput) (*model.BackupRecord, error)
	Delete(ctx context.Context, id string) error
}

// State is the controller's in-flight marker.
type State int

const (
	StateIdle State = iota
	StateLoading
)

// Level classifies a user-facing notification.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
	LevelWarning
)

// Notification is a toast shown to the user.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// DeleteDialog is the pending delete confirmation, if any.
type DeleteDialog struct {
	Open     bool
	TargetID string
}

// Controller owns the cached record set and the list/form/dialog state.
type Controller struct {
	api      API
	notifier Notifier
	timeout  time.Duration

	mu           sync.Mutex
	records      []model.BackupRecord
	editing      *model.BackupRecord
	showForm     bool
	deleteDialog DeleteDialog
	searchTerm   string
	state        State
}

type Option func(*Controller)

// WithTimeout sets the per-call deadline wrapped around every API call so a
// hung request cannot pin the controller in the loading state.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

func New(api API, notifier Notifier, opts ...Option) *Controller {
	c := &Controller{
		api:      api,
		notifier: notifier,
		timeout:  defaultCallTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// begin claims the single in-flight slot or rejects the call.
func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return ErrBusy
	}
	c.state = StateLoading
	return nil
}

func (c *Controller) finish() {
	c.mu.Lock()
	c.state = StateIdle
	c.mu.Unlock()
}

func (c *Controller) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Controller) notify(level Level, title, message string) {
	if c.notifier != nil {
		c.notifier.Notify(Notification{Level: level, Title: title, Message: message})
	}
}

// Load replaces the cached record set with the server's. On failure the
// cache is left as previously held and the user is notified.
func (c *Controller) Load(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish()

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	records, err := c.api.List(ctx)
	if err != nil {
		c.notify(LevelError, "Error", "Gagal mengambil data dari server")
		return fmt.Errorf("load records: %w", err)
	}

	c.mu.Lock()
	c.records = records
	c.mu.Unlock()
	return nil
}

// Submit creates a new record, or updates the pending edit target when one
// is set. The cache is reconciled with the server's returned record: spliced
// in by identifier on update, appended on create.
func (c *Controller) Submit(ctx context.Context, in model.RecordInput) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish()

	c.mu.Lock()
	editing := c.editing
	c.mu.Unlock()

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	if editing != nil {
		rec, err := c.api.Update(ctx, editing.ID, in)
		if err != nil {
			c.notify(LevelError, "Error", "Gagal menyimpan data")
			return fmt.Errorf("update record: %w", err)
		}

		c.mu.Lock()
		for i := range c.records {
			if c.records[i].ID == rec.ID {
				c.records[i] = *rec
				break
			}
		}
		c.editing = nil
		c.showForm = false
		c.mu.Unlock()

		c.notify(LevelSuccess, "Berhasil", "Data backup berhasil diperbarui")
		return nil
	}

	rec, err := c.api.Create(ctx, in)
	if err != nil {
		c.notify(LevelError, "Error", "Gagal menyimpan data")
		return fmt.Errorf("create record: %w", err)
	}

	c.mu.Lock()
	c.records = append(c.records, *rec)
	c.showForm = false
	c.mu.Unlock()

	c.notify(LevelSuccess, "Berhasil", "Data backup berhasil ditambahkan")
	return nil
}

// BeginEdit marks the cached record with the given id as the edit target and
// opens the form. It reports whether the record was found.
func (c *Controller) BeginEdit(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.records {
		if c.records[i].ID == id {
			rec := c.records[i]
			c.editing = &rec
			c.showForm = true
			return true
		}
	}
	return false
}

// CancelEdit clears the edit target and closes the form.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	c.editing = nil
	c.showForm = false
	c.mu.Unlock()
}

// OpenForm opens the form for a new record.
func (c *Controller) OpenForm() {
	c.mu.Lock()
	c.showForm = true
	c.mu.Unlock()
}

// ShowForm reports whether the form is open.
func (c *Controller) ShowForm() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showForm
}

// Editing returns a copy of the pending edit target, or nil.
func (c *Controller) Editing() *model.BackupRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return nil
	}
	rec := *c.editing
	return &rec
}

// RequestDelete opens the confirmation prompt for the given id. Nothing is
// mutated until ConfirmDelete.
func (c *Controller) RequestDelete(id string) {
	c.mu.Lock()
	c.deleteDialog = DeleteDialog{Open: true, TargetID: id}
	c.mu.Unlock()
}

// CancelDelete closes the confirmation prompt without mutating anything.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	c.deleteDialog = DeleteDialog{}
	c.mu.Unlock()
}

// DeleteDialog returns the pending delete confirmation state.
func (c *Controller) DeleteDialog() DeleteDialog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteDialog
}

// ConfirmDelete deletes the pending target. On success the record is removed
// from the cache; on failure the cache is untouched. The prompt closes
// either way.
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	dialog := c.deleteDialog
	c.mu.Unlock()

	if !dialog.Open || dialog.TargetID == "" {
		return nil
	}

	if err := c.begin(); err != nil {
		return err
	}
	defer c.finish()
	defer c.CancelDelete()

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.api.Delete(ctx, dialog.TargetID); err != nil {
		c.notify(LevelError, "Error", "Gagal menghapus data")
		return fmt.Errorf("delete record: %w", err)
	}

	c.mu.Lock()
	kept := make([]model.BackupRecord, 0, len(c.records))
	for _, r := range c.records {
		if r.ID != dialog.TargetID {
			kept = append(kept, r)
		}
	}
	c.records = kept
	c.mu.Unlock()

	c.notify(LevelSuccess, "Berhasil", "Data backup berhasil dihapus")
	return nil
}

// SetSearchTerm updates the search filter. The cache itself is untouched.
func (c *Controller) SetSearchTerm(term string) {
	c.mu.Lock()
	c.searchTerm = term
	c.mu.Unlock()
}

// SearchTerm returns the current search filter.
func (c *Controller) SearchTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchTerm
}

// Records returns a snapshot of the full cached record set.
func (c *Controller) Records() []model.BackupRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.BackupRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Visible returns the records passing the search filter: performer matched
// case-insensitively, backup number and localized short date matched as
// literal substrings. A pure function of the cache and the term.
func (c *Controller) Visible() []model.BackupRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.searchTerm == "" {
		out := make([]model.BackupRecord, len(c.records))
		copy(out, c.records)
		return out
	}

	var out []model.BackupRecord
	for _, r := range c.records {
		if matchesSearch(r, c.searchTerm) {
			out = append(out, r)
		}
	}
	return out
}

func matchesSearch(r model.BackupRecord, term string) bool {
	if strings.Contains(strings.ToLower(r.Performer), strings.ToLower(term)) {
		return true
	}
	if strings.Contains(r.BackupNumber, term) {
		return true
	}
	return strings.Contains(month.FormatShortDate(r.Date), term)
}

// State returns the in-flight marker.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Export writes the currently visible record set to an xlsx file at path
// (the default filename when path is empty). An empty visible set is a
// guarded no-op: the user gets a warning and no file is produced.
func (c *Controller) Export(path string) error {
	c.mu.Lock()
	busy := c.state != StateIdle
	c.mu.Unlock()
	if busy {
		return ErrBusy
	}

	visible := c.Visible()
	if len(visible) == 0 {
		c.notify(LevelWarning, "Peringatan", "Tidak ada data untuk diekspor")
		return export.ErrNoRecords
	}

	if err := export.Write(visible, path); err != nil {
		c.notify(LevelError, "Error", "Gagal mengekspor data")
		return err
	}

	c.notify(LevelSuccess, "Berhasil", "Data berhasil diekspor")
	return nil
}
