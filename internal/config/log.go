package config

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shelltint/shelltint/internal/models"
)

const maxLogLine = 1024 * 1024

// ListDaemonLogs returns the active daemon log and its rotated backups,
// newest first.
func ListDaemonLogs() ([]models.LogFile, error) {
	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, err
	}
	return listLogs(logsDir)
}

func listLogs(dir string) ([]models.LogFile, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	prefix := strings.TrimSuffix(DaemonLogName, ".log")
	var logs []models.LogFile
	for _, e := range dirEntries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		compressed := strings.HasSuffix(name, ".log.gz")
		if !compressed && !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		logs = append(logs, models.LogFile{
			Name:       name,
			Path:       filepath.Join(dir, name),
			Size:       info.Size(),
			ModTime:    info.ModTime(),
			Compressed: compressed,
		})
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].ModTime.After(logs[j].ModTime)
	})
	return logs, nil
}

// TailLog returns the last n lines of a log file. Rotated backups may be
// gzip-compressed. n <= 0 returns every line.
func TailLog(f models.LogFile, n int) ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("log not found: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if f.Compressed {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed log: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLine)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if n > 0 && len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	return lines, nil
}
