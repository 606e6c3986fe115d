// Package medium models one physical backup volume: its assigned
// name, capacity, and the files it ultimately carries, whether
// dispersed source data or generated redundancy blocks.
package medium

import (
	"fmt"

	"github.com/jvogt/paritybak/pkg/unit"
)

// Medium is one output volume. ID and GroupID are assigned once the
// final media list is chunked into groups of three; until then they
// are unset and Medium.ID/GroupID panic if read, mirroring the
// source's own "must be assigned before use" contract.
type Medium struct {
	id        *int
	groupID   *int
	Name      string
	Size      uint64
	Len       uint64
	files     []unit.File
	Redundant bool
}

// New creates a Medium with capacity size and no files yet.
func New(name string, size uint64) *Medium {
	return &Medium{Name: name, Size: size}
}

// WithUnitSet populates the medium from a dispersed UnitSet, flattening
// its units into a single file list and recording the total length.
func (m *Medium) WithUnitSet(set *unit.UnitSet) *Medium {
	m.Len = set.Len()
	m.files = set.Files()
	return m
}

// SetID assigns this medium's id within the media table.
func (m *Medium) SetID(id int) {
	m.id = &id
}

// ID returns the assigned media-table id. Panics if unset, since every
// code path that reads ID runs after media-table assignment.
func (m *Medium) ID() int {
	if m.id == nil {
		panic("medium: ID read before assignment")
	}
	return *m.id
}

// SetGroupID assigns this medium's group (one group = up to three
// media: two data media and their shared redundancy medium).
func (m *Medium) SetGroupID(id int) {
	m.groupID = &id
}

// GroupID returns the assigned group id. Panics if unset.
func (m *Medium) GroupID() int {
	if m.groupID == nil {
		panic("medium: GroupID read before assignment")
	}
	return *m.groupID
}

// Files returns the medium's file list.
func (m *Medium) Files() []unit.File {
	return m.files
}

// PushFile appends a generated file (e.g. a redundancy spill file) to
// the medium.
func (m *Medium) PushFile(f unit.File) {
	m.files = append(m.files, f)
}

// String renders a one-line summary used in progress logging.
func (m *Medium) String() string {
	kind := ""
	if m.Redundant {
		kind = " (redundancy)"
	}
	return fmt.Sprintf("%d files using %d/%d in Medium %s%s", len(m.files), m.Len, m.Size, m.Name, kind)
}
