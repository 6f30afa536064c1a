package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/magiconair/properties"

	"github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/domain"
	collectedout "github.com/LiteracyBridge/utilities-sub000/internal/modules/collected/port/out"
	apperrors "github.com/LiteracyBridge/utilities-sub000/internal/platform/errors"
)

const PropertiesFile = "stats_collected.properties"

type FilePropertiesStore struct{}

func NewFilePropertiesStore() collectedout.PropertiesStore {
	return FilePropertiesStore{}
}

// Load reads the bundle's session properties. Values may be wrapped in single
// or double quotes; the quotes are not part of the value.
func (FilePropertiesStore) Load(_ context.Context, bundleDir string) (domain.Properties, error) {
	path := filepath.Join(bundleDir, PropertiesFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("read properties: %w", err)
	}
	return ParseProperties(raw)
}

// ParseProperties reads `key = value` lines. Backslashes are literal: they
// are doubled before parsing so neither escapes nor line continuations apply.
func ParseProperties(raw []byte) (domain.Properties, error) {
	loader := properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	parsed, err := loader.LoadBytes(bytes.ReplaceAll(raw, []byte(`\`), []byte(`\\`)))
	if err != nil {
		return nil, fmt.Errorf("parse properties: %v: %w", err, apperrors.ErrPropertiesFormat)
	}
	out := make(domain.Properties, parsed.Len())
	for _, key := range parsed.Keys() {
		value, _ := parsed.Get(key)
		out[strings.TrimSpace(key)] = unquote(strings.TrimSpace(value))
	}
	return out, nil
}

func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' || first == '\'') && first == last {
			return value[1 : len(value)-1]
		}
	}
	return value
}
