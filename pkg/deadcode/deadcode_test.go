package deadcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func sampleProject(t *testing.T) string {
	return writeTree(t, map[string]string{
		"src/main.tsx": "import App from './App'\nimport './index.css'\n",
		"src/App.tsx": `import React from 'react'
import { Button } from '@/components/Button'
import { useQuery } from '@tanstack/react-query/build'
const utils = require('./lib/utils')
const Lazy = React.lazy(() => import('./pages/Lazy'))
export default function App() { return null }
`,
		"src/components/Button.tsx":   "export const Button = () => null\nexport function unusedHelper() {}\n",
		"src/components/Orphan.tsx":   "export const Orphan = 1\n",
		"src/lib/utils.ts":            "export const a = 1\nexport const b = 2\n",
		"src/pages/Lazy.tsx":          "export default function Lazy() { return null }\n",
		"node_modules/react/index.js": "export default {}\n",
		"src/types/global.d.ts":       "declare const x: number\n",
	})
}

func TestScan_DetectaArchivosYExportsSinUso(t *testing.T) {
	root := sampleProject(t)

	rep, err := NewScanner().Scan(context.Background(), DefaultOptions(root))
	require.NoError(t, err)

	assert.Equal(t, 6, rep.FilesScanned)
	assert.Equal(t, []string{"src/components/Orphan.tsx"}, rep.UnusedFiles)
	assert.Equal(t, []UnusedExport{{File: "src/components/Button.tsx", Name: "unusedHelper"}}, rep.UnusedExports)
	assert.Equal(t, []string{"@tanstack/react-query", "react"}, rep.ExternalPackages)
	assert.Empty(t, rep.Tools)
}

func TestScan_Herramientas(t *testing.T) {
	root := sampleProject(t)
	var calls []string
	s := NewScannerWithRunner(func(_ context.Context, dir, name string, args ...string) ([]byte, error) {
		assert.Equal(t, root, dir)
		assert.Equal(t, "npx", name)
		calls = append(calls, args[1])
		if args[1] == "depcheck" {
			return []byte(`{"dependencies":["lodash"]}`), errors.New("exit status 255")
		}
		return []byte("src/x.ts:1 - foo\n"), nil
	})
	opts := DefaultOptions(root)
	opts.WithTools = true

	rep, err := s.Scan(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"ts-prune", "depcheck"}, calls)
	require.Len(t, rep.Tools, 2)
	assert.Equal(t, "src/x.ts:1 - foo", rep.Tools[0].Output)
	assert.Empty(t, rep.Tools[0].Error)
	assert.Equal(t, "exit status 255", rep.Tools[1].Error)
}

func TestScan_RootInvalido(t *testing.T) {
	_, err := NewScanner().Scan(context.Background(), Options{})
	assert.Error(t, err)

	_, err = NewScanner().Scan(context.Background(), Options{Root: filepath.Join(t.TempDir(), "no-existe")})
	assert.Error(t, err)
}

func TestScan_ContextoCancelado(t *testing.T) {
	root := sampleProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewScanner().Scan(ctx, DefaultOptions(root))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseSource(t *testing.T) {
	pf := parseSource(`
/* import Ignored from './ignored' */
// import AlsoIgnored from './also'
import React, { useState as useS, type FC } from 'react'
import * as api from "./api"
import {
  a,
  b,
} from './multi'
export { x as y, z } from './re'
export * from './all'
export const one = 1
export async function two() {}
export interface Three {}
const four = 4
export { four }
export default one
`)
	var specs []string
	for _, imp := range pf.Imports {
		specs = append(specs, imp.Spec)
	}
	assert.ElementsMatch(t, []string{"react", "./api", "./multi", "./re", "./all"}, specs)
	for _, imp := range pf.Imports {
		switch imp.Spec {
		case "react":
			assert.ElementsMatch(t, []string{"default", "useState", "FC"}, imp.Names)
		case "./api", "./all":
			assert.Equal(t, []string{allNames}, imp.Names)
		case "./multi":
			assert.ElementsMatch(t, []string{"a", "b"}, imp.Names)
		case "./re":
			assert.ElementsMatch(t, []string{"x", "z"}, imp.Names)
		}
	}
	assert.ElementsMatch(t, []string{"y", "z", "one", "two", "Three", "four", "default"}, pf.Exports)
}

func TestPackageName(t *testing.T) {
	assert.Equal(t, "react", packageName("react"))
	assert.Equal(t, "lodash", packageName("lodash/debounce"))
	assert.Equal(t, "@radix-ui/react-dialog", packageName("@radix-ui/react-dialog"))
	assert.Equal(t, "@tanstack/react-query", packageName("@tanstack/react-query/build/x"))
}

func TestResolve(t *testing.T) {
	known := map[string]bool{
		"src/a.ts":                 true,
		"src/components/index.tsx": true,
	}
	aliases := map[string]string{"@/": "src/"}

	got, local := resolve("src/b.ts", "./a", aliases, known)
	assert.True(t, local)
	assert.Equal(t, "src/a.ts", got)

	got, _ = resolve("src/pages/p.tsx", "../components", aliases, known)
	assert.Equal(t, "src/components/index.tsx", got)

	got, _ = resolve("src/pages/p.tsx", "@/a", aliases, known)
	assert.Equal(t, "src/a.ts", got)

	got, local = resolve("src/b.ts", "./missing", aliases, known)
	assert.True(t, local)
	assert.Empty(t, got)

	_, local = resolve("src/b.ts", "zod", aliases, known)
	assert.False(t, local)
}

func TestResolve_AliasMasLargoGana(t *testing.T) {
	known := map[string]bool{
		"src/ui/button.tsx":            true,
		"src/components/button.tsx":    true,
		"src/components/lib/format.ts": true,
	}
	aliases := map[string]string{
		"@/":                "src/",
		"@/components/":     "src/ui/",
		"@/components/lib/": "src/components/lib/",
	}
	// se repite para que el orden aleatorio del mapa no esconda el fallo
	for i := 0; i < 20; i++ {
		got, local := resolve("src/app.tsx", "@/components/button", aliases, known)
		assert.True(t, local)
		assert.Equal(t, "src/ui/button.tsx", got)

		got, _ = resolve("src/app.tsx", "@/components/lib/format", aliases, known)
		assert.Equal(t, "src/components/lib/format.ts", got)

		got, _ = resolve("src/app.tsx", "@/components", aliases, known)
		assert.Empty(t, got, "sin barra final solo aplica @/")
	}
}
