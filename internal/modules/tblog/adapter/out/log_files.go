package out

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/domain"
	tblogout "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/port/out"
	apperrors "github.com/LiteracyBridge/utilities-sub000/internal/platform/errors"
)

var logDirNames = []string{"log", "LOG"}

// LocalLogFileStore reads numbered log files from an unpacked bundle.
type LocalLogFileStore struct{}

func NewLocalLogFileStore() tblogout.LogFileStore {
	return LocalLogFileStore{}
}

func (LocalLogFileStore) List(_ context.Context, bundleDir string) ([]string, error) {
	dir, err := findLogDir(bundleDir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read log dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	ordered := domain.OrderLogFiles(names)
	paths := make([]string, len(ordered))
	for i, name := range ordered {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}

func findLogDir(bundleDir string) (string, error) {
	for _, name := range logDirNames {
		dir := filepath.Join(bundleDir, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%s: %w", bundleDir, apperrors.ErrNoLogDirectory)
}

func (LocalLogFileStore) ReadLines(_ context.Context, path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fn(strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read log file %s: %w", filepath.Base(path), err)
	}
	return nil
}
