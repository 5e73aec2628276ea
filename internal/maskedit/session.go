package maskedit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nozzlewatch/nozzlewatch/internal/mask"
)

// DefaultBrushRadius is the brush radius in display pixels.
const DefaultBrushRadius = 6

var ErrNotOpen = errors.New("mask editor is not open")

// MaskStore is the part of the settings store the editor writes through.
type MaskStore interface {
	CommittedMask() string
	SetPendingMask(encoded string) error
	Save(ctx context.Context) error
}

type Options struct {
	// BrushRadius is in display pixels. Zero marks only the cell under the pointer.
	BrushRadius float64
	Logger      *slog.Logger
}

// Session accumulates pointer strokes over the inspected image into a scratch
// grid drawn on top of the committed mask. Nothing is persisted until Confirm.
type Session struct {
	mu     sync.Mutex
	store  MaskStore
	radius float64
	logger *slog.Logger

	open     bool
	stroking bool
	base     mask.Grid
	scratch  mask.Grid

	savedBeforeClear string
	cleared          bool
}

func New(store MaskStore, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "maskedit")
	}
	radius := opts.BrushRadius
	if radius < 0 {
		radius = 0
	}

	return &Session{
		store:  store,
		radius: radius,
		logger: logger,
	}
}

// Open shows the committed mask as the base layer and starts with an empty scratch grid.
func (s *Session) Open() {
	committed := s.store.CommittedMask()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = mask.DecodeOrEmpty(committed, s.logger)
	s.scratch = mask.Grid{}
	s.savedBeforeClear = ""
	s.cleared = false
	s.stroking = false
	s.open = true
	s.logger.Debug("mask editor opened", "committed_cells", s.base.Count())
}

func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.open
}

// BrushRadius returns the brush radius in display pixels.
func (s *Session) BrushRadius() float64 {
	return s.radius
}

// Press starts a stroke and marks the brush under the pointer.
// It returns the number of newly marked cells.
func (s *Session) Press(x, y float64, vp mask.Viewport) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return 0
	}
	s.stroking = true

	return s.scratch.Paint(mask.BrushCells(x, y, s.radius, vp))
}

// Move extends the current stroke. Motion without a pressed pointer is ignored.
func (s *Session) Move(x, y float64, vp mask.Viewport) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || !s.stroking {
		return 0
	}

	return s.scratch.Paint(mask.BrushCells(x, y, s.radius, vp))
}

func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stroking = false
}

// Overlay is the grid to render: the base layer merged with the scratch strokes.
func (s *Session) Overlay() mask.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()

	return mask.Merge(s.base, s.scratch)
}

// Clear previews an empty mask. The committed mask is remembered so a later
// cancel can restore it; nothing is persisted.
func (s *Session) Clear() {
	committed := s.store.CommittedMask()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return
	}
	s.savedBeforeClear = committed
	s.cleared = true
	s.base = mask.Grid{}
	s.scratch = mask.Grid{}
	s.stroking = false
	s.logger.Debug("mask editor cleared")
}

// CancelAfterClear discards the strokes and restores the pre-clear base layer
// when it held any exclusions. It always closes the session.
func (s *Session) CancelAfterClear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cleared && s.savedBeforeClear != mask.EmptyString() {
		s.base = mask.DecodeOrEmpty(s.savedBeforeClear, s.logger)
	}
	s.scratch = mask.Grid{}
	s.savedBeforeClear = ""
	s.cleared = false
	s.stroking = false
	s.open = false
	s.logger.Debug("mask editor cancelled")
}

// Cancel closes the editor without persisting anything.
func (s *Session) Cancel() {
	s.CancelAfterClear()
}

// Confirm merges the strokes into the base layer, stages the result as the
// pending mask and saves. The session stays open when the save fails so the
// user can retry.
func (s *Session) Confirm(ctx context.Context) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()

		return ErrNotOpen
	}
	merged := mask.Merge(s.base, s.scratch)
	s.stroking = false
	s.mu.Unlock()

	encoded := mask.Encode(merged)
	if err := s.store.SetPendingMask(encoded); err != nil {
		return fmt.Errorf("stage mask: %w", err)
	}
	if err := s.store.Save(ctx); err != nil {
		s.logger.Warn("mask save failed, editor kept open", "error", err)

		return err
	}

	s.mu.Lock()
	s.base = merged
	s.scratch = mask.Grid{}
	s.savedBeforeClear = ""
	s.cleared = false
	s.open = false
	s.mu.Unlock()
	s.logger.Info("exclusion mask confirmed", "excluded_cells", merged.Count())

	return nil
}
