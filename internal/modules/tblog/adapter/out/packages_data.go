package out

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/domain"
	tblogout "github.com/LiteracyBridge/utilities-sub000/internal/modules/tblog/port/out"
	apperrors "github.com/LiteracyBridge/utilities-sub000/internal/platform/errors"
)

// PackagesDataLoader reads content/packages_data.txt from a bundle.
type PackagesDataLoader struct{}

func NewPackagesDataLoader() tblogout.CatalogLoader {
	return PackagesDataLoader{}
}

func (PackagesDataLoader) Load(_ context.Context, bundleDir, _ string) (*domain.Deployment, error) {
	path := filepath.Join(bundleDir, "content", "packages_data.txt")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("open packages data: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read packages data: %w", err)
	}
	return ParsePackagesData(lines)
}

type lineCursor struct {
	lines []string
	pos   int
}

func (c *lineCursor) next(what string) (string, error) {
	if c.pos >= len(c.lines) {
		return "", fmt.Errorf("expected %s at end of file: %w", what, apperrors.ErrCatalogFormat)
	}
	line := c.lines[c.pos]
	c.pos++
	return line, nil
}

func (c *lineCursor) count(what string) (int, error) {
	line, err := c.next(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("expected %s, got %q: %w", what, line, apperrors.ErrCatalogFormat)
	}
	return n, nil
}

// ParsePackagesData parses the significant (non-blank, comment-free) lines of
// a packages_data.txt file.
func ParsePackagesData(lines []string) (*domain.Deployment, error) {
	c := &lineCursor{lines: lines}
	if _, err := c.count("format version"); err != nil {
		return nil, err
	}
	name, err := c.next("deployment name")
	if err != nil {
		return nil, err
	}
	nPaths, err := c.count("path count")
	if err != nil {
		return nil, err
	}
	paths := make([]string, nPaths)
	for i := range paths {
		if paths[i], err = c.next("path"); err != nil {
			return nil, err
		}
	}

	deployment := &domain.Deployment{Name: name}
	nPackages, err := c.count("package count")
	if err != nil {
		return nil, err
	}
	for p := 0; p < nPackages; p++ {
		pkgName, err := c.next("package name")
		if err != nil {
			return nil, err
		}
		pkg := domain.Package{Name: pkgName}
		nPlaylists, err := c.count("playlist count")
		if err != nil {
			return nil, err
		}
		for l := 0; l < nPlaylists; l++ {
			title, err := c.next("playlist title")
			if err != nil {
				return nil, err
			}
			playlist := domain.Playlist{Title: title}
			nMessages, err := c.count("message count")
			if err != nil {
				return nil, err
			}
			for m := 0; m < nMessages; m++ {
				line, err := c.next("message")
				if err != nil {
					return nil, err
				}
				msg, err := parseMessageLine(line, paths)
				if err != nil {
					return nil, err
				}
				playlist.Messages = append(playlist.Messages, msg)
			}
			pkg.Playlists = append(pkg.Playlists, playlist)
		}
		deployment.Packages = append(deployment.Packages, pkg)
	}
	return deployment, nil
}

func parseMessageLine(line string, paths []string) (domain.Message, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return domain.Message{}, fmt.Errorf("message line %q: %w", line, apperrors.ErrCatalogFormat)
	}
	idx, err := strconv.Atoi(fields[0])
	if err != nil || idx < 0 || idx >= len(paths) {
		return domain.Message{}, fmt.Errorf("message line %q has bad path index: %w", line, apperrors.ErrCatalogFormat)
	}
	file := strings.TrimSuffix(paths[idx], "/") + "/" + fields[1]
	return domain.Message{ID: domain.MessageIDFromFile(fields[1]), FileName: file}, nil
}
