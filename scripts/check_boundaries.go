// Command check_boundaries enforces the import rules between the layers of
// every bounded context under contexts/. Run it from the repository root.
package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	modulePath    = "governance"
	contextsPath  = modulePath + "/contexts"
	contractsPath = modulePath + "/contracts"
	internalPath  = modulePath + "/internal"
	kvtestAdapter = "kvtest"
)

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// source describes where a file sits inside a bounded context.
type source struct {
	File    string
	Service string // e.g. governance/contexts/governance/voting-engine
	Layer   string // domain, ports, application, adapters, transport or "" for the root
	Adapter string // adapter directory when Layer is adapters
	Test    bool
}

type importRef struct {
	Path string
	Line int
}

func main() {
	violations, err := collectViolations("contexts")
	if err != nil {
		fmt.Fprintf(os.Stderr, "boundary check failed: %v\n", err)
		os.Exit(2)
	}
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) ([]violation, error) {
	var out []violation
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		src, ok := classify(filepath.ToSlash(path))
		if !ok {
			return nil
		}
		imports, err := readImports(path)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		out = append(out, checkImports(src, imports)...)
		return nil
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Import < out[j].Import
	})
	return out, err
}

// classify maps contexts/<context>/<service>/<layer>/... onto a source.
func classify(slashPath string) (source, bool) {
	parts := strings.Split(slashPath, "/")
	if len(parts) < 4 || parts[0] != "contexts" {
		return source{}, false
	}
	src := source{
		File:    slashPath,
		Service: strings.Join([]string{contextsPath, parts[1], parts[2]}, "/"),
		Test:    strings.HasSuffix(slashPath, "_test.go"),
	}
	if len(parts) > 4 {
		src.Layer = parts[3]
	}
	if src.Layer == "adapters" && len(parts) > 5 {
		src.Adapter = parts[4]
	}
	return src, true
}

func readImports(path string) ([]importRef, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}
	refs := make([]importRef, 0, len(file.Imports))
	for _, imp := range file.Imports {
		refs = append(refs, importRef{
			Path: strings.Trim(imp.Path.Value, `"`),
			Line: fset.Position(imp.Pos()).Line,
		})
	}
	return refs, nil
}

func checkImports(src source, imports []importRef) []violation {
	var out []violation
	for _, imp := range imports {
		for _, rule := range rulesFor(src, imp.Path) {
			out = append(out, violation{
				File:   src.File,
				Line:   imp.Line,
				Import: imp.Path,
				Rule:   rule,
			})
		}
	}
	return out
}

func rulesFor(src source, importPath string) []string {
	var broken []string
	if within(importPath, contextsPath) && !within(importPath, src.Service) {
		broken = append(broken, "cross-context imports are forbidden")
	}

	if src.Layer == "adapters" {
		if rule := adapterRule(src, importPath); rule != "" {
			broken = append(broken, rule)
		}
	}
	// Tests may reach for adapters and fixtures; the layer rules bind
	// production code only.
	if src.Test {
		return broken
	}

	if within(importPath, internalPath) {
		broken = append(broken, "contexts must not import runtime infrastructure")
	}

	var allowed []string
	switch src.Layer {
	case "domain":
		allowed = []string{src.Service + "/domain"}
	case "ports":
		allowed = []string{src.Service + "/domain/entities", contractsPath}
	case "application":
		allowed = []string{
			src.Service + "/application",
			src.Service + "/domain",
			src.Service + "/ports",
			contractsPath,
		}
	case "transport":
		allowed = []string{}
	default:
		return broken
	}
	if !isStdlib(importPath) && !withinAny(importPath, allowed) {
		broken = append(broken, src.Layer+" import is outside explicit allowlist")
	}
	return broken
}

// adapterRule keeps adapters independent of each other. The shared store
// suite is the one adapter package test files may import.
func adapterRule(src source, importPath string) string {
	adaptersPath := src.Service + "/adapters"
	if !within(importPath, adaptersPath) {
		return ""
	}
	target := strings.SplitN(strings.TrimPrefix(importPath, adaptersPath+"/"), "/", 2)[0]
	switch {
	case target == src.Adapter:
		return ""
	case target == kvtestAdapter && src.Test:
		return ""
	case target == kvtestAdapter:
		return "store suite is for test files only"
	default:
		return "adapters must not import other adapters"
	}
}

func within(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func withinAny(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if within(path, prefix) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if within(importPath, modulePath) {
		return false
	}
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}
