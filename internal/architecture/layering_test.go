package architecture_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulesPrefix = "calmtrace/internal/modules/"

var layers = []string{"adapter/in", "adapter/out", "usecase", "service", "domain", "port/in", "port/out", "dto"}

func TestModuleImportsRespectLayers(t *testing.T) {
	t.Parallel()
	fset := token.NewFileSet()
	root := filepath.Join("..", "modules")
	checked := 0
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		slash := filepath.ToSlash(path)
		module, layer := locate(slash)
		if module == "" || layer == "" {
			return nil
		}
		node, parseErr := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if parseErr != nil {
			return parseErr
		}
		checked++
		for _, imp := range node.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)
			if !strings.HasPrefix(importPath, modulesPrefix) {
				continue
			}
			if reason := violation(module, layer, importPath); reason != "" {
				t.Errorf("%s (%s) imports %s: %s", slash, layer, importPath, reason)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk modules: %v", err)
	}
	if checked == 0 {
		t.Fatalf("no module sources found under %s", root)
	}
}

func TestViolation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		module string
		layer  string
		imp    string
		bad    bool
	}{
		{"adapter out reads another port in", "risk", "adapter/out", modulesPrefix + "anomaly/port/in", false},
		{"adapter out reads another dto", "baseline", "adapter/out", modulesPrefix + "sample/dto", false},
		{"adapter out reaches another domain", "risk", "adapter/out", modulesPrefix + "sample/domain", true},
		{"service reads another port in", "relief", "service", modulesPrefix + "sample/port/in", true},
		{"usecase imports own service", "sample", "usecase", modulesPrefix + "sample/service", false},
		{"usecase imports adapter", "sample", "usecase", modulesPrefix + "sample/adapter/out", true},
		{"adapter in reads own dto", "risk", "adapter/in", modulesPrefix + "risk/dto", false},
		{"adapter in reaches own domain", "risk", "adapter/in", modulesPrefix + "risk/domain", true},
		{"domain imports service", "baseline", "domain", modulesPrefix + "baseline/service", true},
		{"port out imports own domain", "baseline", "port/out", modulesPrefix + "baseline/domain", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := violation(tt.module, tt.layer, tt.imp) != ""
			if got != tt.bad {
				t.Fatalf("violation(%s, %s, %s) = %v, want %v", tt.module, tt.layer, tt.imp, got, tt.bad)
			}
		})
	}
}

// locate returns the module and layer of a path below internal/modules.
func locate(path string) (string, string) {
	parts := strings.Split(path, "/")
	module := ""
	for i := 0; i < len(parts)-1; i++ {
		if parts[i] == "modules" {
			module = parts[i+1]
			break
		}
	}
	for _, layer := range layers {
		if strings.Contains(path, "/"+layer+"/") {
			return module, layer
		}
	}
	return module, ""
}

func importLayer(importPath string) string {
	for _, layer := range layers {
		if strings.HasSuffix(importPath, "/"+layer) || strings.Contains(importPath, "/"+layer+"/") {
			return layer
		}
	}
	return ""
}

// violation reports why layer in module may not import importPath, or "".
func violation(module, layer, importPath string) string {
	target := importLayer(importPath)
	if !strings.HasPrefix(importPath, modulesPrefix+module+"/") {
		if layer != "adapter/out" {
			return "only adapter/out may cross modules"
		}
		if target != "port/in" && target != "dto" {
			return "other modules are reachable through port/in and dto only"
		}
		return ""
	}

	switch layer {
	case "adapter/in":
		if target != "port/in" && target != "dto" {
			return "inbound adapters talk to the usecase port"
		}
	case "usecase":
		if strings.HasPrefix(target, "adapter/") {
			return "usecases never see adapters"
		}
	case "service":
		if strings.HasPrefix(target, "adapter/") || target == "usecase" {
			return "services sit below usecases"
		}
	case "domain", "dto":
		if target != "" && target != "domain" {
			return "domain and dto are leaves"
		}
	case "port/in":
		if target != "dto" {
			return "inbound ports speak dto"
		}
	}
	return ""
}
