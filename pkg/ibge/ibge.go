// Package ibge lee la tabla de municipios del IBGE (DTB, CSV separado por ';') y genera
// el script SQL que puebla ibge_municipalities.
package ibge

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/erp-api/pkg/textkey"
)

// Municipality municipio con código IBGE de 7 dígitos.
type Municipality struct {
	Code string
	Name string
	UF   string
}

// ufByCode sigla del estado a partir de los 2 primeros dígitos del código.
var ufByCode = map[string]string{
	"11": "RO", "12": "AC", "13": "AM", "14": "RR", "15": "PA", "16": "AP", "17": "TO",
	"21": "MA", "22": "PI", "23": "CE", "24": "RN", "25": "PB", "26": "PE", "27": "AL", "28": "SE", "29": "BA",
	"31": "MG", "32": "ES", "33": "RJ", "35": "SP",
	"41": "PR", "42": "SC", "43": "RS",
	"50": "MS", "51": "MT", "52": "GO", "53": "DF",
}

// UFFromCode devuelve la sigla o "" si el prefijo no corresponde a un estado.
func UFFromCode(code string) string {
	if len(code) < 2 {
		return ""
	}
	return ufByCode[code[:2]]
}

// Latin1Reader decodifica la entrada ISO-8859-1 en que el IBGE publica la DTB.
func Latin1Reader(r io.Reader) io.Reader {
	return transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
}

// Parse lee el CSV (ya en UTF-8). Las columnas se ubican por el encabezado:
// "Código Município Completo" (o "codigo") y "Nome_Município" (o "nome").
// Filas con código inválido se descartan; el resultado sale ordenado por código.
func Parse(r io.Reader) ([]Municipality, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ibge: leer encabezado: %w", err)
	}
	codeCol, nameCol := columns(header)
	if codeCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf("ibge: encabezado sin columnas de código y nombre del município")
	}

	seen := make(map[string]bool)
	var out []Municipality
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ibge: leer fila: %w", err)
		}
		if codeCol >= len(rec) || nameCol >= len(rec) {
			continue
		}
		code := strings.TrimSpace(rec[codeCol])
		name := strings.TrimSpace(rec[nameCol])
		uf := UFFromCode(code)
		if len(code) != 7 || !digits(code) || name == "" || uf == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, Municipality{Code: code, Name: name, UF: uf})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func columns(header []string) (codeCol, nameCol int) {
	codeCol, nameCol = -1, -1
	for i, h := range header {
		k := strings.ReplaceAll(textkey.Normalize(strings.TrimPrefix(h, "\uFEFF")), "_", " ")
		switch {
		case k == "codigo municipio completo" || k == "codigo" || k == "cod municipio":
			codeCol = i
		case k == "nome municipio" || k == "nome":
			nameCol = i
		}
	}
	return codeCol, nameCol
}

func digits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// WriteSQL escribe los INSERT en lotes de batch filas con upsert por código.
func WriteSQL(w io.Writer, list []Municipality, batch int) error {
	if batch <= 0 {
		batch = 500
	}
	if _, err := fmt.Fprintf(w, "-- Municípios IBGE (%d registros)\n", len(list)); err != nil {
		return err
	}
	for start := 0; start < len(list); start += batch {
		end := min(start+batch, len(list))
		var b strings.Builder
		b.WriteString("INSERT INTO ibge_municipalities (code, name, uf) VALUES\n")
		for i, m := range list[start:end] {
			if i > 0 {
				b.WriteString(",\n")
			}
			fmt.Fprintf(&b, "  ('%s', '%s', '%s')", m.Code, escapeSQL(m.Name), m.UF)
		}
		b.WriteString("\nON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, uf = EXCLUDED.uf;\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
