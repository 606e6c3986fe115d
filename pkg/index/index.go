// Package index builds the three on-disk tables that let a restore
// tool find every file, work out which medium it lives on, and locate
// its redundancy/replication partners: the media table, the file
// table, and the redundancy table.
package index

import (
	"encoding/json"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	"github.com/jvogt/paritybak/pkg/medium"
	"github.com/jvogt/paritybak/pkg/unit"
)

// Hash is a SHA-1 digest, the size the redundancy engine records for
// each block.
type Hash [20]byte

// MediaTable records every medium's assigned id and name, in
// assignment order.
type MediaTable struct {
	Identifier string       `json:"identifier"`
	Table      []MediaEntry `json:"table"`
}

// MediaEntry is one medium's id/name pair.
type MediaEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// NewMediaTable returns an empty MediaTable carrying its identifying
// label.
func NewMediaTable() *MediaTable {
	return &MediaTable{Identifier: "Media Index Table"}
}

// Add records m and returns its dense id within the table.
func (t *MediaTable) Add(m *medium.Medium) int {
	id := len(t.Table)
	t.Table = append(t.Table, MediaEntry{ID: id, Name: m.Name})
	return id
}

// FileEntry is one file's record in the file table: its dense id, the
// medium it lives on, its logical path, and its size. ActualPath is
// the on-disk source location, kept only in memory for staging — it
// is never serialized.
type FileEntry struct {
	ID         int    `json:"id"`
	MediumID   int    `json:"medium_id"`
	Path       string `json:"path"`
	Size       uint64 `json:"size"`
	ActualPath string `json:"-"`
}

// FileTable records every file across a group's media, in the order
// they were added.
type FileTable struct {
	Identifier string      `json:"identifier"`
	Table      []FileEntry `json:"table"`
}

// NewFileTable builds a FileTable from every file on every medium in
// media, in medium order.
func NewFileTable(media []*medium.Medium) (*FileTable, error) {
	t := &FileTable{Identifier: "File Index Table"}
	for _, m := range media {
		if err := t.AddMedium(m); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// AddMedium appends every file on m to the table.
func (t *FileTable) AddMedium(m *medium.Medium) error {
	for _, f := range m.Files() {
		if _, err := t.Add(m, f); err != nil {
			return err
		}
	}
	return nil
}

// Add appends a single file entry for f, owned by m, and returns its
// dense id.
func (t *FileTable) Add(m *medium.Medium, f unit.File) (int, error) {
	logical, err := f.Path.Logical()
	if err != nil {
		return 0, errors.Wrap(err, "error adding file to file table")
	}
	id := len(t.Table)
	t.Table = append(t.Table, FileEntry{
		ID:         id,
		MediumID:   m.ID(),
		Path:       logical,
		Size:       f.Len,
		ActualPath: f.Path.String(),
	})
	return id, nil
}

// Block identifies one block's source (file id, block id within that
// file), its length, and its content hash.
type Block struct {
	File  int    `json:"file"`
	Block int    `json:"block"`
	Size  uint32 `json:"size"`
	Hash  Hash   `json:"hash"`
}

// NewBlock builds a Block, copying hash into the fixed-size Hash
// field.
func NewBlock(file, blockID int, size uint32, hash []byte) Block {
	var h Hash
	copy(h[:], hash)
	return Block{File: file, Block: blockID, Size: size, Hash: h}
}

// RedundancyEntryKind distinguishes a pairwise XOR redundancy entry
// from a lone-side replication entry.
type RedundancyEntryKind string

const (
	KindRedundancy  RedundancyEntryKind = "redundancy"
	KindReplication RedundancyEntryKind = "replication"
)

// RedundancyEntry is one row of the redundancy table: either a
// Redundancy triple (left/right source blocks plus the XOR result) or
// a Replication pair (the lone source block plus its zero-padded
// copy).
type RedundancyEntry struct {
	Kind        RedundancyEntryKind `json:"kind"`
	Left        *Block              `json:"left,omitempty"`
	Right       *Block              `json:"right,omitempty"`
	Redundancy  *Block              `json:"redundancy,omitempty"`
	Original    *Block              `json:"original,omitempty"`
	Replication *Block              `json:"replication,omitempty"`
}

// RedundancyTable records how to reconstruct every generated block.
type RedundancyTable struct {
	Identifier string            `json:"identifier"`
	Table      []RedundancyEntry `json:"table"`
}

// NewRedundancyTable returns an empty RedundancyTable carrying its
// identifying label.
func NewRedundancyTable() *RedundancyTable {
	return &RedundancyTable{Identifier: "Redundancy Index Table"}
}

// Add appends an entry to the table.
func (t *RedundancyTable) Add(entry RedundancyEntry) {
	t.Table = append(t.Table, entry)
}

// Encoding selects how tables are serialized to disk.
type Encoding int

const (
	// EncodingJSON writes tables as pretty-printed JSON, the default
	// (human-inspectable, diffable) on-disk format.
	EncodingJSON Encoding = iota
	// EncodingBinary writes tables as CBOR, trading readability for
	// smaller, faster-to-parse table files.
	EncodingBinary
)

// Serialize writes table to w using enc.
func Serialize(w io.Writer, enc Encoding, table interface{}) error {
	switch enc {
	case EncodingBinary:
		data, err := cbor.Marshal(table)
		if err != nil {
			return errors.Wrap(err, "serialisation")
		}
		_, err = w.Write(data)
		return errors.Wrap(err, "serialisation")
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return errors.Wrap(encoder.Encode(table), "serialisation")
	}
}

// Deserialize reads a table of table's underlying type from r using
// enc.
func Deserialize(r io.Reader, enc Encoding, table interface{}) error {
	switch enc {
	case EncodingBinary:
		data, err := io.ReadAll(r)
		if err != nil {
			return errors.Wrap(err, "deserialisation")
		}
		return errors.Wrap(cbor.Unmarshal(data, table), "deserialisation")
	default:
		return errors.Wrap(json.NewDecoder(r).Decode(table), "deserialisation")
	}
}
