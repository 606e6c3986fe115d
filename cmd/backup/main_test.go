package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRunBackupRejectsNonNumericMediumSize(t *testing.T) {
	flagWorkDir = ""
	flagGoal = 5.0
	flagDebug = true

	source := t.TempDir()
	if err := os.WriteFile(filepath.Join(source, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	log = testLogger{}
	err := runBackup(backupCmd, []string{source, "not-a-number"})
	if err == nil {
		t.Error("expected an error for a non-numeric medium size")
	}
}

type testLogger struct{}

func (testLogger) Debugf(format string, x ...interface{}) {}
func (testLogger) Errorf(format string, x ...interface{}) {}
func (testLogger) Infof(format string, x ...interface{})  {}
func (testLogger) Printf(format string, x ...interface{}) {}
func (testLogger) Warnf(format string, x ...interface{})  {}
func (testLogger) IsInfoEnabled() bool                     { return false }
func (testLogger) IsDebugEnabled() bool                    { return false }
