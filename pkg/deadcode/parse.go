package deadcode

import (
	"regexp"
	"strings"
)

var (
	reImportFrom   = regexp.MustCompile(`(?m)^\s*import\s+(?:type\s+)?([\w$*{}\s,]+?)\s+from\s+['"]([^'"]+)['"]`)
	reImportBare   = regexp.MustCompile(`(?m)^\s*import\s+['"]([^'"]+)['"]`)
	reDynamic      = regexp.MustCompile(`\bimport\(\s*['"]([^'"]+)['"]\s*\)`)
	reRequire      = regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`)
	reExportFrom   = regexp.MustCompile(`(?m)^\s*export\s+(?:type\s+)?(\*(?:\s+as\s+[\w$]+)?|\{[^}]*\})\s+from\s+['"]([^'"]+)['"]`)
	reExportDecl   = regexp.MustCompile(`(?m)^\s*export\s+(?:declare\s+)?(?:async\s+)?(?:abstract\s+)?(?:const|let|var|function\*?|class|interface|type|enum)\s+([A-Za-z_$][\w$]*)`)
	reExportDef    = regexp.MustCompile(`(?m)^\s*export\s+default\b`)
	reExportList   = regexp.MustCompile(`(?m)^\s*export\s+(?:type\s+)?\{([^}]*)\}(\s*from\b)?`)
	reLineComment  = regexp.MustCompile(`(?m)^\s*//.*$`)
	reBlockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// allNames marca que el módulo se usa completo (namespace, require, import dinámico).
const allNames = "*"

// importRef un import de un archivo: especificador y nombres que consume.
type importRef struct {
	Spec  string
	Names []string
}

// parsedFile imports y exports detectados en un archivo.
type parsedFile struct {
	Imports []importRef
	Exports []string
}

func parseSource(src string) parsedFile {
	src = reBlockComment.ReplaceAllString(src, "")
	src = reLineComment.ReplaceAllString(src, "")

	var pf parsedFile
	for _, m := range reImportFrom.FindAllStringSubmatch(src, -1) {
		pf.Imports = append(pf.Imports, importRef{Spec: m[2], Names: importClauseNames(m[1])})
	}
	for _, m := range reImportBare.FindAllStringSubmatch(src, -1) {
		pf.Imports = append(pf.Imports, importRef{Spec: m[1]})
	}
	for _, re := range []*regexp.Regexp{reDynamic, reRequire} {
		for _, m := range re.FindAllStringSubmatch(src, -1) {
			pf.Imports = append(pf.Imports, importRef{Spec: m[1], Names: []string{allNames}})
		}
	}
	for _, m := range reExportFrom.FindAllStringSubmatch(src, -1) {
		clause := strings.TrimSpace(m[1])
		if strings.HasPrefix(clause, "*") {
			pf.Imports = append(pf.Imports, importRef{Spec: m[2], Names: []string{allNames}})
			if parts := strings.Fields(clause); len(parts) == 3 {
				pf.Exports = append(pf.Exports, parts[2])
			}
			continue
		}
		imported, exported := braceNames(clause)
		pf.Imports = append(pf.Imports, importRef{Spec: m[2], Names: imported})
		pf.Exports = append(pf.Exports, exported...)
	}

	for _, m := range reExportDecl.FindAllStringSubmatch(src, -1) {
		pf.Exports = append(pf.Exports, m[1])
	}
	if reExportDef.MatchString(src) {
		pf.Exports = append(pf.Exports, "default")
	}
	for _, m := range reExportList.FindAllStringSubmatch(src, -1) {
		if m[2] != "" {
			continue // re-export, ya procesado
		}
		_, exported := braceNames("{" + m[1] + "}")
		pf.Exports = append(pf.Exports, exported...)
	}
	pf.Exports = dedupe(pf.Exports)
	return pf
}

// importClauseNames nombres consumidos por `import <clause> from`.
// "React, { useState as s }" -> [default useState]; "* as api" -> [*].
func importClauseNames(clause string) []string {
	clause = strings.TrimSpace(clause)
	var names []string
	if i := strings.Index(clause, "{"); i >= 0 {
		j := strings.LastIndex(clause, "}")
		if j > i {
			imported, _ := braceNames(clause[i : j+1])
			names = append(names, imported...)
		}
		clause = clause[:i]
	}
	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case strings.HasPrefix(part, "*"):
			names = append(names, allNames)
		default:
			names = append(names, "default")
		}
	}
	return names
}

// braceNames interpreta "{ a, b as c, type D }": devuelve nombres de origen y nombres expuestos.
func braceNames(clause string) (source, exposed []string) {
	inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(clause), "{"), "}"))
	for _, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "type "))
		if part == "" {
			continue
		}
		fields := strings.Fields(part)
		src, exp := fields[0], fields[0]
		if len(fields) == 3 && fields[1] == "as" {
			exp = fields[2]
		}
		source = append(source, src)
		exposed = append(exposed, exp)
	}
	return source, exposed
}

// packageName nombre del paquete npm de un especificador externo ("@scope/pkg/sub" -> "@scope/pkg").
func packageName(spec string) string {
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") && len(parts) > 1 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
