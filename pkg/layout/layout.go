// Package layout orchestrates a full backup run: scanning the source
// tree, dispersing it across a growing number of media, sizing
// blocks, generating redundancy, writing index tables, and staging
// everything into its final on-disk layout.
package layout

import (
	"fmt"
	"path/filepath"

	"github.com/cloudfoundry/bytefmt"
	"github.com/pkg/errors"

	"github.com/jvogt/paritybak/internal/consts"
	"github.com/jvogt/paritybak/pkg/disperse"
	"github.com/jvogt/paritybak/pkg/index"
	"github.com/jvogt/paritybak/pkg/medium"
	"github.com/jvogt/paritybak/pkg/path"
	"github.com/jvogt/paritybak/pkg/redundancy"
	"github.com/jvogt/paritybak/pkg/stats"
	"github.com/jvogt/paritybak/pkg/unit"
	"github.com/jvogt/paritybak/pkg/workspace"
)

// DefaultNames is the finite, literal list of medium names assigned in
// order. Once exhausted, Build returns ErrOutOfNames.
var DefaultNames = []string{"Apple", "Avocado", "Banana", "Blueberry", "Cherry", "Cranberry"}

// ErrOutOfNames is returned when a backup needs more media than
// DefaultNames has names for.
var ErrOutOfNames = errors.New("layout: ran out of names for media")

// ErrIncompleteGroup is returned if the final media list isn't a
// multiple of three once redundancy media are interleaved. It should
// be unreachable in practice (see DESIGN.md) but is asserted
// explicitly rather than trusted silently.
var ErrIncompleteGroup = errors.New("layout: media count is not a multiple of three after interleaving redundancy media")

// Logger is the collaborator threaded through every pipeline stage.
// github.com/jvogt/paritybak/pkg/elog.View satisfies this.
type Logger interface {
	Warnf(format string, x ...interface{})
	Infof(format string, x ...interface{})
	Debugf(format string, x ...interface{})
	Errorf(format string, x ...interface{})
}

// Options configures one Build run.
type Options struct {
	StartPath  string
	MediumSize uint64
	Goal       float64
	WorkDir    string
	Debug      bool
	Encoding   index.Encoding
}

// Build runs the full pipeline described above and leaves a completed
// layout under the returned Workspace's Root(). The caller owns the
// returned Workspace and is responsible for calling Close on it.
func Build(opts Options, log Logger) (*workspace.Workspace, error) {
	log.Infof("started")

	ws, err := acquireWorkspace(opts, log)
	if err != nil {
		return nil, err
	}

	root := path.WithPrefix(opts.StartPath).WithPath(opts.StartPath)
	unitSet, err := unit.FromPath(root, log)
	if err != nil {
		return nil, errors.Wrap(err, "error scanning source tree")
	}

	plan := unitSet.PlanMerges()
	unitSet.ExecuteMerges(plan)

	for _, u := range unitSet.Units {
		if u.Len > opts.MediumSize {
			return nil, errors.Errorf("unit %q has length %d, larger than the medium size %d; this isn't supported", u.Path.String(), u.Len, opts.MediumSize)
		}
	}

	mediaCount := int((unitSet.Len() + opts.MediumSize - 1) / opts.MediumSize)
	log.Infof("estimated media count: %d", mediaCount)
	if mediaCount%2 == 1 {
		mediaCount++
	}

	sets := []*unit.UnitSet{unitSet}
	for {
		disperseOver(mediaCount, &sets, opts.Goal, log)
		for _, s := range sets {
			log.Infof("unit set: %d units, %s", len(s.Units), bytefmt.ByteSize(s.Len()))
		}

		allFit := true
		for _, s := range sets {
			if s.Len() > opts.MediumSize {
				allFit = false
				break
			}
		}
		if allFit {
			break
		}
		log.Infof("%d media weren't enough", mediaCount)
		mediaCount += 2
	}

	media, err := nameMedia(sets, opts.MediumSize)
	if err != nil {
		return nil, err
	}
	media = interleaveRedundancy(media, opts.MediumSize)

	for _, m := range media {
		log.Infof("%s", m)
	}

	if len(media)%3 != 0 {
		return nil, ErrIncompleteGroup
	}

	allFiles := []unit.File{}
	for _, m := range media {
		allFiles = append(allFiles, m.Files()...)
	}
	st, err := stats.FromFiles(allFiles)
	if err != nil {
		return nil, errors.Wrap(err, "error gathering file statistics")
	}
	blockSize := stats.BlockSize(st, log)

	for groupID := 0; groupID*3 < len(media); groupID++ {
		group := media[groupID*3 : groupID*3+3]
		if err := buildGroup(ws, groupID, group, int(blockSize), opts.Encoding, log); err != nil {
			return nil, err
		}
	}

	log.Infof("link files in appropriate locations")
	if err := stageAll(ws, media); err != nil {
		return nil, err
	}

	log.Infof("finished")
	return ws, nil
}

func acquireWorkspace(opts Options, log Logger) (*workspace.Workspace, error) {
	if opts.WorkDir != "" {
		ws, err := workspace.AcquireAt(opts.WorkDir, opts.Debug)
		if err != nil {
			return nil, err
		}
		log.Infof("using forced work directory: %s", ws.Root())
		return ws, nil
	}
	ws, err := workspace.Acquire(opts.StartPath, opts.Debug)
	if err != nil {
		return nil, err
	}
	log.Infof("created temporary directory: %s", ws.Root())
	return ws, nil
}

// disperseOver grows sets to est, then runs one dispersal pass over
// all of them.
func disperseOver(est int, sets *[]*unit.UnitSet, goal float64, log Logger) {
	for len(*sets) < est {
		*sets = append(*sets, &unit.UnitSet{})
	}

	d := disperse.New(*sets, goal, log)
	d.Run()

	log.Infof("after dispersing, standard deviation is %.2fM (%.2f%% of mean %.2fM)",
		d.Measure()/1024/1024, d.Measure()*100/d.Mean(), d.Mean()/1024/1024)
}

// nameMedia assigns DefaultNames, in order, to each dispersed set. It
// fails with ErrOutOfNames unless the list also has a name left for
// every redundancy medium interleaveRedundancy will add.
func nameMedia(sets []*unit.UnitSet, mediumSize uint64) ([]*medium.Medium, error) {
	if len(sets)+len(sets)/2 > len(DefaultNames) {
		return nil, ErrOutOfNames
	}
	media := make([]*medium.Medium, len(sets))
	for i, s := range sets {
		media[i] = medium.New(DefaultNames[i], mediumSize).WithUnitSet(s)
	}
	return media, nil
}

// interleaveRedundancy inserts one redundancy medium after every pair
// of data media, drawing its name from the next unused DefaultNames
// entry.
func interleaveRedundancy(media []*medium.Medium, mediumSize uint64) []*medium.Medium {
	var out []*medium.Medium
	nameIdx := len(media)
	for i, m := range media {
		out = append(out, m)
		if i%2 == 1 {
			name := DefaultNames[nameIdx]
			nameIdx++
			redun := medium.New(name, mediumSize)
			redun.Redundant = true
			out = append(out, redun)
		}
	}
	return out
}

// buildGroup assigns ids, builds the redundancy medium, and writes the
// group's index tables and encryption key.
func buildGroup(ws interface {
	Dir(...string) (string, error)
}, groupID int, group []*medium.Medium, blockSize int, enc index.Encoding, log Logger) error {
	mediaTable := index.NewMediaTable()
	for _, m := range group {
		m.SetGroupID(groupID)
		id := mediaTable.Add(m)
		m.SetID(id)
	}

	fileTable, err := index.NewFileTable(group)
	if err != nil {
		return err
	}
	redunTable := index.NewRedundancyTable()

	log.Infof("build redundancy for %s and %s", group[0].Name, group[1].Name)
	redunDir, err := ws.Dir(consts.RedundancySubdir, fmt.Sprintf("%d", groupID))
	if err != nil {
		return err
	}

	key, err := redundancy.GenerateKey()
	if err != nil {
		return err
	}

	builder := redundancy.New(blockSize, redunDir, group[0], group[1], group[2], fileTable, key, log)
	if err := builder.Build(); err != nil {
		return errors.Wrap(err, "error building redundancy")
	}
	partials := builder.PartialIndices()

	log.Infof("build redundancy index table")
	for _, f := range group[2].Files() {
		fileID, err := fileTable.Add(group[2], f)
		if err != nil {
			return err
		}
		for _, p := range partials[f.Path.String()] {
			entry := index.RedundancyEntry{}
			if p.Kind.IsReplication {
				entry.Kind = index.KindReplication
				original := p.Kind.Original
				entry.Original = &original
				replication := index.NewBlock(fileID, p.ID, p.Len, p.Hash[:])
				entry.Replication = &replication
			} else {
				entry.Kind = index.KindRedundancy
				left := p.Kind.Left
				right := p.Kind.Right
				entry.Left = &left
				entry.Right = &right
				redun := index.NewBlock(fileID, p.ID, p.Len, p.Hash[:])
				entry.Redundancy = &redun
			}
			redunTable.Add(entry)
		}
	}

	log.Infof("write index tables")
	indexDir, err := ws.Dir(consts.IndexSubdir, fmt.Sprintf("%d", groupID))
	if err != nil {
		return err
	}
	if err := writeTable(filepath.Join(indexDir, "media-table"), enc, mediaTable); err != nil {
		return err
	}
	if err := writeTable(filepath.Join(indexDir, "file-table"), enc, fileTable); err != nil {
		return err
	}
	if err := writeTable(filepath.Join(indexDir, "redun-table"), enc, redunTable); err != nil {
		return err
	}

	log.Infof("write encryption key")
	encKeyDir, err := ws.Dir(consts.EncryptionKeySubdir, fmt.Sprintf("%d", groupID))
	if err != nil {
		return err
	}
	return writeRaw(filepath.Join(encKeyDir, "encryption-key"), key[:])
}
