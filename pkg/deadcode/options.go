// Package deadcode detecta archivos y exports sin uso en proyectos TypeScript/JavaScript.
// El análisis es por expresiones regulares sobre imports, exports, require() e import()
// dinámico; no construye un AST.
package deadcode

import (
	"context"
	"os/exec"
	"time"
)

// Options parámetros del escaneo. Los globs usan sintaxis doublestar relativa a Root.
type Options struct {
	Root        string
	Include     []string
	Exclude     []string
	EntryPoints []string          // archivos que no cuentan como "sin uso" aunque nadie los importe
	Aliases     map[string]string // prefijo de import -> directorio relativo a Root ("@/" -> "src/")
	WithTools   bool              // ejecutar también ts-prune y depcheck vía npx
}

// DefaultOptions configuración para un proyecto Vite/React típico.
func DefaultOptions(root string) Options {
	return Options{
		Root:    root,
		Include: []string{"**/*.{ts,tsx,js,jsx}"},
		Exclude: []string{"**/node_modules/**", "**/dist/**", "**/build/**", "**/*.d.ts"},
		EntryPoints: []string{
			"src/main.{ts,tsx,js,jsx}",
			"src/index.{ts,tsx,js,jsx}",
			"**/*.{test,spec}.{ts,tsx,js,jsx}",
			"*.config.{ts,js,mjs,cjs}",
			"supabase/functions/**",
		},
		Aliases: map[string]string{"@/": "src/"},
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions(o.Root)
	if len(o.Include) == 0 {
		o.Include = def.Include
	}
	if o.Exclude == nil {
		o.Exclude = def.Exclude
	}
	if o.EntryPoints == nil {
		o.EntryPoints = def.EntryPoints
	}
	if o.Aliases == nil {
		o.Aliases = def.Aliases
	}
	return o
}

// UnusedExport símbolo exportado que ningún archivo importa.
type UnusedExport struct {
	File string `json:"file"`
	Name string `json:"name"`
}

// ToolResult salida de una herramienta externa (ts-prune, depcheck).
type ToolResult struct {
	Name   string `json:"name"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Report resultado del escaneo; se serializa tal cual como report.json.
type Report struct {
	Root             string         `json:"root"`
	GeneratedAt      time.Time      `json:"generated_at"`
	FilesScanned     int            `json:"files_scanned"`
	UnusedFiles      []string       `json:"unused_files"`
	UnusedExports    []UnusedExport `json:"unused_exports"`
	ExternalPackages []string       `json:"external_packages"`
	Tools            []ToolResult   `json:"tools,omitempty"`
}

// CommandRunner ejecuta un comando en dir y devuelve su salida combinada.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}
