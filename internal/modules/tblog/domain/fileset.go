package domain

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

var logFilePattern = regexp.MustCompile(`^.*_(\d+)\.txt$`)

// LogFileNumber extracts N from a `*_N.txt` log file name.
func LogFileNumber(name string) (int, bool) {
	m := logFilePattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// OrderLogFiles keeps only `*_N.txt` names and orders them by the numeric
// value of N, so log_2.txt precedes log_10.txt.
func OrderLogFiles(names []string) []string {
	type numbered struct {
		name string
		n    int
	}
	files := make([]numbered, 0, len(names))
	for _, name := range names {
		if n, ok := LogFileNumber(name); ok {
			files = append(files, numbered{name: name, n: n})
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].n != files[j].n {
			return files[i].n < files[j].n
		}
		return files[i].name < files[j].name
	})
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.name
	}
	return out
}
