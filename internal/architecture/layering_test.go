package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulesImportPrefix = "github.com/LiteracyBridge/utilities-sub000/internal/modules/"

func TestHexagonalLayerImports(t *testing.T) {
	t.Parallel()
	fset := token.NewFileSet()
	root := filepath.Join("..", "modules")
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		slash := filepath.ToSlash(path)
		module := moduleName(slash)
		layer := detectLayer(slash)
		if module == "" || layer == "" {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if !strings.HasPrefix(importPath, modulesImportPrefix) {
				continue
			}
			if violatesLayerRule(module, layer, importPath) {
				t.Errorf("forbidden import in %s (%s): %s", slash, layer, importPath)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk modules: %v", err)
	}
}

func TestLayerRules(t *testing.T) {
	t.Parallel()
	cases := []struct {
		module, layer, target string
		forbidden             bool
	}{
		{"collected", "usecase", "tblog/port/in", false},
		{"collected", "usecase", "tblog/dto", false},
		{"collected", "usecase", "tblog/domain", true},
		{"collected", "usecase", "tblog/usecase", true},
		{"collected", "usecase", "collected/adapter/out", true},
		{"collected", "adapter/out", "collected/domain", false},
		{"collected", "adapter/in", "collected/domain", true},
		{"tblog", "service", "tblog/usecase", true},
		{"tblog", "domain", "tblog/service", true},
		{"tblog", "adapter/in", "tblog/port/in", false},
	}
	for _, tc := range cases {
		got := violatesLayerRule(tc.module, tc.layer, modulesImportPrefix+tc.target)
		if got != tc.forbidden {
			t.Errorf("%s %s -> %s: forbidden=%v, want %v", tc.module, tc.layer, tc.target, got, tc.forbidden)
		}
	}
}

func moduleName(path string) string {
	parts := strings.Split(path, "/")
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "modules" {
			return parts[i+1]
		}
	}
	return ""
}

func detectLayer(path string) string {
	for _, layer := range []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"} {
		if strings.Contains(path, "/"+layer+"/") {
			return layer
		}
	}
	return ""
}

func isPortIn(path string) bool {
	return strings.Contains(path, "/port/in/") || strings.HasSuffix(path, "/port/in")
}

func isDTO(path string) bool {
	return strings.Contains(path, "/dto/") || strings.HasSuffix(path, "/dto")
}

// violatesLayerRule allows modules to reach each other only through port/in
// and dto.
func violatesLayerRule(module, layer, importPath string) bool {
	if !strings.HasPrefix(importPath, modulesImportPrefix+module+"/") {
		return !isPortIn(importPath) && !isDTO(importPath)
	}

	switch layer {
	case "adapter/in":
		return !isPortIn(importPath) && !isDTO(importPath)
	case "usecase":
		return strings.Contains(importPath, "/adapter/")
	case "service":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/")
	case "domain":
		return strings.Contains(importPath, "/adapter/") || strings.Contains(importPath, "/usecase/") || strings.Contains(importPath, "/service/")
	default:
		return false
	}
}
