package settings

import (
	"fmt"

	"github.com/nozzlewatch/nozzlewatch/internal/domain"
)

// FieldID is the stable name of a setting, equal to its engine JSON key.
type FieldID string

// FieldKind tells the settings form which input to render.
type FieldKind int

const (
	KindFloat FieldKind = iota + 1
	KindInt
	KindBool
	KindChoice
	KindText
	KindSecret
	KindMask
)

// Descriptor describes a field for form rendering.
type Descriptor struct {
	ID      FieldID
	Label   string
	Kind    FieldKind
	Allowed string
	Options []string
}

// Field holds the committed and pending values of one setting.
// Pending only ever holds a validated value or the committed one.
type Field[T comparable] struct {
	desc      Descriptor
	bind      func(*domain.PluginSettings) *T
	validate  Validator[T]
	committed T
	pending   T
}

func newField[T comparable](desc Descriptor, bind func(*domain.PluginSettings) *T, validate Validator[T]) *Field[T] {
	return &Field[T]{desc: desc, bind: bind, validate: validate}
}

func (f *Field[T]) Descriptor() Descriptor { return f.desc }
func (f *Field[T]) Committed() T           { return f.committed }
func (f *Field[T]) Pending() T             { return f.pending }

// stage validates raw and, only on success, replaces the pending value.
func (f *Field[T]) stage(raw string) error {
	res := f.validate(raw)
	if !res.OK() {
		err := res.Err()
		err.Field = f.desc.ID
		err.Label = f.desc.Label

		return err
	}
	f.pending = res.Value()

	return nil
}

func (f *Field[T]) load(src domain.PluginSettings) {
	v := *f.bind(&src)
	f.committed = v
	f.pending = v
}

func (f *Field[T]) commit(src domain.PluginSettings) {
	f.committed = *f.bind(&src)
}

func (f *Field[T]) revert() {
	f.pending = f.committed
}

func (f *Field[T]) dirty() bool {
	return f.pending != f.committed
}

func (f *Field[T]) writePending(dst *domain.PluginSettings) {
	*f.bind(dst) = f.pending
}

func (f *Field[T]) writeCommitted(dst *domain.PluginSettings) {
	*f.bind(dst) = f.committed
}

func (f *Field[T]) pendingText() string {
	return fmt.Sprint(f.pending)
}

// stagedField erases T so the store can keep heterogeneous fields in one table.
type stagedField interface {
	Descriptor() Descriptor
	stage(raw string) error
	load(src domain.PluginSettings)
	commit(src domain.PluginSettings)
	revert()
	dirty() bool
	writePending(dst *domain.PluginSettings)
	writeCommitted(dst *domain.PluginSettings)
	pendingText() string
}
