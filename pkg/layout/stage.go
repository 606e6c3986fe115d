package layout

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jvogt/paritybak/internal/consts"
	"github.com/jvogt/paritybak/pkg/index"
	"github.com/jvogt/paritybak/pkg/medium"
	"github.com/jvogt/paritybak/pkg/verifile"
	"github.com/jvogt/paritybak/pkg/workspace"
)

// writeTable serializes table to path in enc, framed with a verifile
// writer so restore can detect a truncated or corrupted table file.
func writeTable(path string, enc index.Encoding, table interface{}) error {
	w, err := verifile.Create(path)
	if err != nil {
		return err
	}
	if err := index.Serialize(w, enc, table); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// writeRaw writes data to path, framed the same way as writeTable.
func writeRaw(path string, data []byte) error {
	w, err := verifile.Create(path)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// stageAll links every medium's files and index tables into the final
// layout/<medium name>/... tree, and links each data medium's
// encryption key alongside it. Redundancy media don't get a key link:
// restoring from them requires the paired data medium's key.
func stageAll(ws *workspace.Workspace, media []*medium.Medium) error {
	for i, m := range media {
		groupID := fmt.Sprintf("%d", i/3)
		mediumDir := filepath.Join(ws.Root(), consts.LayoutSubdir, m.Name)

		for _, f := range m.Files() {
			logical, err := f.Path.Logical()
			if err != nil {
				return errors.Wrapf(err, "error staging %q", f.Path.String())
			}
			dst := filepath.Join(mediumDir, consts.FilesSubdir, logical)
			if err := ws.Stage(f.Path.String(), dst); err != nil {
				return err
			}
		}

		indexDir := filepath.Join(ws.Root(), consts.IndexSubdir, groupID)
		for _, table := range []string{"media-table", "file-table", "redun-table"} {
			if err := ws.Stage(filepath.Join(indexDir, table), filepath.Join(mediumDir, table)); err != nil {
				return err
			}
		}

		if !m.Redundant {
			keySrc := filepath.Join(ws.Root(), consts.EncryptionKeySubdir, groupID, "encryption-key")
			if err := ws.Stage(keySrc, filepath.Join(mediumDir, "encryption-key")); err != nil {
				return err
			}
		}
	}
	return nil
}
