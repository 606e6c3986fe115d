package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jvogt/paritybak/pkg/elog"
)

var log elog.View

var (
	flagWorkDir      string
	flagGoal         float64
	flagDebug        bool
	flagVerbose      bool
	flagJSON         bool
	flagBinaryTables bool
)

func commandInit() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "enable debug output and keep the work directory on exit")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "enable json log output")

	backupCmd.Flags().StringVarP(&flagWorkDir, "work-dir", "w", "", "use the specified directory as the work directory instead of a temporary one")
	backupCmd.Flags().Float64Var(&flagGoal, "goal", 5.0, "target coefficient of variation (percent) for the size disperser")
	backupCmd.Flags().BoolVar(&flagBinaryTables, "binary-tables", false, "write index tables in the compact binary encoding instead of JSON")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger := &elog.CLI{}

		if flagJSON {
			logger.DisableTTY = true
			logrus.SetFormatter(&logrus.JSONFormatter{})
		} else {
			logrus.SetFormatter(logger)
		}

		logrus.SetLevel(logrus.TraceLevel)

		if flagDebug {
			logger.IsDebug = true
			logger.IsVerbose = true
		} else if flagVerbose {
			logger.IsVerbose = true
		}

		dual, err := elog.NewDual(logger)
		if err != nil {
			return err
		}
		log = dual
		return nil
	}

	rootCmd.AddCommand(backupCmd)
}

var rootCmd = &cobra.Command{
	Use:   "paritybak",
	Short: "An offline, multi-volume parity backup tool",
	Long: `paritybak disperses a source directory across a growing number of
fixed-size backup media, generating XOR/replication redundancy data for
every pair so that any one medium in a group can be rebuilt from the
other two.`,
}

var backupCmd = &cobra.Command{
	Use:   "backup START-PATH MEDIUM-SIZE",
	Short: "Back up a directory tree across parity-protected media",
	Args:  cobra.ExactArgs(2),
	RunE:  runBackup,
}
