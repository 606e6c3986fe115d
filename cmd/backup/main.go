package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cloudfoundry/bytefmt"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jvogt/paritybak/pkg/index"
	"github.com/jvogt/paritybak/pkg/layout"
)

func main() {
	commandInit()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBackup(cmd *cobra.Command, args []string) error {
	startPath := args[0]

	mediumSizeMiB, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return errors.Wrap(err, "expecting the size of the backup media in MiB")
	}
	mediumSize := mediumSizeMiB * 1024 * 1024

	workDir := flagWorkDir
	if workDir != "" {
		expanded, err := homedir.Expand(workDir)
		if err != nil {
			return errors.Wrapf(err, "error expanding work directory %q", workDir)
		}
		workDir = expanded
	}

	enc := index.EncodingJSON
	if flagBinaryTables {
		enc = index.EncodingBinary
	}

	ws, err := layout.Build(layout.Options{
		StartPath:  startPath,
		MediumSize: mediumSize,
		Goal:       flagGoal,
		WorkDir:    workDir,
		Debug:      flagDebug,
		Encoding:   enc,
	}, log)
	if err != nil {
		return err
	}
	defer ws.Close()

	fmt.Printf("backup staged at %s (medium size %s)\n", ws.Root(), bytefmt.ByteSize(mediumSize))
	return nil
}
