package deadcode

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

var resolveExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// Scanner ejecuta el análisis sobre el sistema de archivos.
type Scanner struct {
	run CommandRunner
	now func() time.Time
}

// NewScanner crea un scanner que ejecuta herramientas externas con os/exec.
func NewScanner() *Scanner {
	return &Scanner{run: execRunner, now: time.Now}
}

// NewScannerWithRunner permite sustituir la ejecución de ts-prune/depcheck.
func NewScannerWithRunner(run CommandRunner) *Scanner {
	return &Scanner{run: run, now: time.Now}
}

// Scan recorre opts.Root y arma el reporte.
func (s *Scanner) Scan(ctx context.Context, opts Options) (*Report, error) {
	if opts.Root == "" {
		return nil, errors.New("deadcode: root requerido")
	}
	info, err := os.Stat(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("deadcode: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("deadcode: %s no es un directorio", opts.Root)
	}
	opts = opts.withDefaults()
	fsys := os.DirFS(opts.Root)

	files, err := collectFiles(fsys, opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(files))
	for _, f := range files {
		known[f] = true
	}

	parsed := make(map[string]parsedFile, len(files))
	used := make(map[string]map[string]bool) // archivo -> nombres importados
	external := make(map[string]bool)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("deadcode: leer %s: %w", f, err)
		}
		pf := parseSource(string(data))
		parsed[f] = pf
		for _, imp := range pf.Imports {
			target, isLocal := resolve(f, imp.Spec, opts.Aliases, known)
			if !isLocal {
				external[packageName(imp.Spec)] = true
				continue
			}
			if target == "" {
				continue // import local que no está en el conjunto escaneado
			}
			if used[target] == nil {
				used[target] = make(map[string]bool)
			}
			for _, n := range imp.Names {
				used[target][n] = true
			}
		}
	}

	report := &Report{
		Root:             opts.Root,
		GeneratedAt:      s.now().UTC(),
		FilesScanned:     len(files),
		UnusedFiles:      []string{},
		UnusedExports:    []UnusedExport{},
		ExternalPackages: sortedKeys(external),
	}
	for _, f := range files {
		entry := matchesAny(opts.EntryPoints, f)
		names, imported := used[f]
		if !imported {
			if !entry {
				report.UnusedFiles = append(report.UnusedFiles, f)
			}
			continue
		}
		if entry || names[allNames] {
			continue
		}
		for _, exp := range parsed[f].Exports {
			if !names[exp] {
				report.UnusedExports = append(report.UnusedExports, UnusedExport{File: f, Name: exp})
			}
		}
	}

	if opts.WithTools {
		report.Tools = s.runTools(ctx, opts.Root)
	}
	return report, nil
}

func (s *Scanner) runTools(ctx context.Context, root string) []ToolResult {
	tools := []struct {
		name string
		args []string
	}{
		{"ts-prune", []string{"--yes", "ts-prune"}},
		{"depcheck", []string{"--yes", "depcheck", "--json"}},
	}
	out := make([]ToolResult, 0, len(tools))
	for _, t := range tools {
		res := ToolResult{Name: t.name}
		b, err := s.run(ctx, root, "npx", t.args...)
		res.Output = strings.TrimSpace(string(b))
		if err != nil {
			// depcheck sale con código 255 cuando encuentra dependencias sin uso
			res.Error = err.Error()
		}
		out = append(out, res)
	}
	return out
}

func collectFiles(fsys fs.FS, include, exclude []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("deadcode: glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || matchesAny(exclude, m) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// resolve traduce un especificador a un archivo escaneado. isLocal=false indica paquete externo.
func resolve(from, spec string, aliases map[string]string, known map[string]bool) (target string, isLocal bool) {
	var base string
	switch {
	case strings.HasPrefix(spec, "./"), strings.HasPrefix(spec, "../"), spec == ".", spec == "..":
		base = path.Join(path.Dir(from), spec)
	case strings.HasPrefix(spec, "/"):
		base = strings.TrimPrefix(path.Clean(spec), "/")
	default:
		for _, prefix := range aliasPrefixes(aliases) {
			if strings.HasPrefix(spec, prefix) {
				base = path.Join(aliases[prefix], strings.TrimPrefix(spec, prefix))
				break
			}
		}
		if base == "" {
			return "", false
		}
	}
	candidates := []string{base}
	for _, ext := range resolveExtensions {
		candidates = append(candidates, base+ext)
	}
	for _, ext := range resolveExtensions {
		candidates = append(candidates, path.Join(base, "index"+ext))
	}
	for _, c := range candidates {
		if known[c] {
			return c, true
		}
	}
	return "", true
}

// aliasPrefixes de más largo a más corto: "@/components/" gana sobre "@/".
func aliasPrefixes(aliases map[string]string) []string {
	out := make([]string, 0, len(aliases))
	for p := range aliases {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
