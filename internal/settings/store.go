package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/nozzlewatch/nozzlewatch/internal/bus"
	"github.com/nozzlewatch/nozzlewatch/internal/connectors"
	"github.com/nozzlewatch/nozzlewatch/internal/domain"
	"github.com/nozzlewatch/nozzlewatch/internal/mask"
	"github.com/nozzlewatch/nozzlewatch/internal/notifications"
)

const (
	notificationTitleSaved  = "Success"
	notificationTextSaved   = "Settings have been saved."
	notificationTitleFailed = "Error"
	notificationTextFailed  = "Failed to save settings."
)

// ErrNoBackend is returned by Save when the store has nowhere to persist to.
var ErrNoBackend = errors.New("no settings backend configured")

// Persister stores a full settings snapshot. Implementations either accept the
// whole snapshot or return an error; partial writes are not modelled.
type Persister interface {
	SaveSettings(ctx context.Context, settings domain.PluginSettings) error
}

// Loader reads the last persisted settings.
type Loader interface {
	LoadSettings(ctx context.Context) (domain.PluginSettings, error)
}

type Options struct {
	Persister Persister
	Notifier  notifications.Sender
	Bus       bus.Publisher
	Logger    *slog.Logger
}

// Store stages user edits separately from persisted values and commits them
// atomically on a successful save.
type Store struct {
	mu     sync.Mutex
	fields []stagedField
	byID   map[FieldID]stagedField
	mask   *Field[string]

	persister Persister
	notifier  notifications.Sender
	bus       bus.Publisher
	logger    *slog.Logger

	saveSeq atomic.Uint64
}

func New(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "settings.store")
	}

	fields, maskField := newFieldTable()
	byID := make(map[FieldID]stagedField, len(fields))
	for _, f := range fields {
		byID[f.Descriptor().ID] = f
	}

	s := &Store{
		fields:    fields,
		byID:      byID,
		mask:      maskField,
		persister: opts.Persister,
		notifier:  opts.Notifier,
		bus:       opts.Bus,
		logger:    logger,
	}
	s.Load(domain.DefaultPluginSettings())

	return s
}

// Load seeds committed and pending values from persisted settings, discarding
// any unsaved edits. A corrupt mask is replaced by the empty mask.
func (s *Store) Load(persisted domain.PluginSettings) {
	if err := mask.Validate(persisted.MaskData); err != nil {
		s.logger.Warn("persisted exclusion mask is corrupt, using empty mask", "error", err)
		persisted.MaskData = mask.EmptyString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fields {
		f.load(persisted)
	}
}

// SetPending validates raw and stages it for the next save. On a validation
// failure the pending value is left as it was.
func (s *Store) SetPending(id FieldID, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("unknown setting %q", id)
	}
	if err := f.stage(raw); err != nil {
		s.logger.Debug("rejected pending setting", "field", id, "error", err)

		return err
	}

	return nil
}

func (s *Store) SetPendingMask(encoded string) error {
	return s.SetPending(FieldMaskData, encoded)
}

// Revert drops every pending edit.
func (s *Store) Revert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.fields {
		f.revert()
	}
}

func (s *Store) Committed() domain.PluginSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out domain.PluginSettings
	for _, f := range s.fields {
		f.writeCommitted(&out)
	}

	return out
}

func (s *Store) Pending() domain.PluginSettings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pendingLocked()
}

func (s *Store) pendingLocked() domain.PluginSettings {
	var out domain.PluginSettings
	for _, f := range s.fields {
		f.writePending(&out)
	}

	return out
}

func (s *Store) CommittedMask() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mask.Committed()
}

// PendingText returns the pending value formatted for an input widget.
func (s *Store) PendingText(id FieldID) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.byID[id]
	if !ok {
		return "", false
	}

	return f.pendingText(), true
}

// Dirty lists fields whose pending value differs from the committed one.
func (s *Store) Dirty() []FieldID {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []FieldID
	for _, f := range s.fields {
		if f.dirty() {
			out = append(out, f.Descriptor().ID)
		}
	}

	return out
}

func (s *Store) Fields() []Descriptor {
	out := make([]Descriptor, 0, len(s.fields))
	for _, f := range s.fields {
		out = append(out, f.Descriptor())
	}

	return out
}

// Save persists the pending values as they are at call time. Edits made while
// the request is in flight stay pending and are not attributed to this save.
// Concurrent saves each commit their own snapshot when they complete.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	snapshot := s.pendingLocked()
	s.mu.Unlock()

	saveID := s.saveSeq.Add(1)
	if s.persister == nil {
		return s.saveFailed(saveID, snapshot, ErrNoBackend)
	}

	s.logger.Info("saving settings", "save_id", saveID)
	if err := s.persister.SaveSettings(ctx, snapshot); err != nil {
		return s.saveFailed(saveID, snapshot, err)
	}

	s.mu.Lock()
	for _, f := range s.fields {
		f.commit(snapshot)
	}
	s.mu.Unlock()

	s.logger.Info("settings saved", "save_id", saveID)
	s.notify(notifications.Payload{
		Title:   notificationTitleSaved,
		Content: notificationTextSaved,
		Level:   notifications.LevelSuccess,
	})
	if s.bus != nil {
		s.bus.Publish(connectors.TopicSettingsCommitted, snapshot)
	}

	return nil
}

// SaveAsync runs Save in the background and delivers its result once.
func (s *Store) SaveAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- s.Save(ctx)
	}()

	return done
}

func (s *Store) saveFailed(saveID uint64, snapshot domain.PluginSettings, err error) error {
	s.logger.Error("save settings", "save_id", saveID, "error", err)
	s.notify(notifications.Payload{
		Title:   notificationTitleFailed,
		Content: notificationTextFailed,
		Level:   notifications.LevelError,
	})
	if s.bus != nil {
		s.bus.Publish(connectors.TopicSettingsSaveFail, domain.SettingsSaveFailed{
			Settings: snapshot,
			Err:      err.Error(),
		})
	}

	return &PersistenceError{Err: err}
}

func (s *Store) notify(payload notifications.Payload) {
	if s.notifier == nil {
		return
	}
	s.notifier.Send(payload)
}
