// Package consts centralizes the handful of fixed values shared
// across packages, so a change to one of them can't drift between
// call sites.
package consts

const (
	LogPath     = "ideas.log"
	LogPathJSON = "ideas-log.json"

	SmallFileUpperBound = 10 * 1024 * 1024
	RecordSize          = 64
	MaxRedundancyBlocks  = 1000

	WorkDirPrefix       = "backup"
	LayoutSubdir        = "layout"
	FilesSubdir         = "files"
	IndexSubdir         = "index"
	RedundancySubdir    = "redundancy"
	EncryptionKeySubdir = "encryption-key"
)
