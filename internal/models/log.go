package models

import "time"

// LogFile describes one daemon log file: the active file or a rotated backup.
type LogFile struct {
	Name       string
	Path       string
	Size       int64
	ModTime    time.Time
	Compressed bool
}
