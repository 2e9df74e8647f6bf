package reconcile

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrEmptyInput is returned when the first sheet has no data rows.
	ErrEmptyInput = errors.New("El archivo está vacío")
	// ErrInvalidFormat is returned when the bytes are not a readable workbook.
	ErrInvalidFormat = errors.New("formato de archivo no válido")
	// ErrSourceMissing wraps ErrInvalidFormat so callers that only check the
	// format error still reject a missing fixed-location source.
	ErrSourceMissing = fmt.Errorf("%w: el archivo de origen no existe", ErrInvalidFormat)
)

// Column headers recognised in the first row.
const (
	ColCedula          = "cedula"
	ColNombre          = "nombre"
	ColEmail           = "email"
	ColTelefono        = "telefono"
	ColDepartamento    = "departamento"
	ColTituloAcademico = "tituloAcademico"
)

var knownColumns = map[string]string{
	"cedula":          ColCedula,
	"nombre":          ColNombre,
	"email":           ColEmail,
	"telefono":        ColTelefono,
	"departamento":    ColDepartamento,
	"tituloacademico": ColTituloAcademico,
}

// Row is one data row keyed by header name. Number is the row number
// reported back to the uploader: the first data row is 2.
type Row struct {
	Number int
	Fields map[string]string
}

// Get returns the trimmed value of a column, or "" when absent.
func (r Row) Get(col string) string { return r.Fields[col] }

func canonicalHeader(h string) string {
	h = strings.TrimSpace(h)
	if c, ok := knownColumns[strings.ToLower(h)]; ok {
		return c
	}
	return h
}

// ParseWorkbook reads the first sheet of an xlsx workbook. The first row is
// the header; rows whose cells are all blank are skipped and do not count
// towards row numbering.
func ParseWorkbook(data []byte) ([]Row, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: archivo sin contenido", ErrInvalidFormat)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyInput
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: no se pudo leer la hoja %q: %v", ErrInvalidFormat, sheets[0], err)
	}

	var header []string
	var rows []Row
	for _, cells := range raw {
		if blank(cells) {
			continue
		}
		if header == nil {
			header = make([]string, len(cells))
			for i, c := range cells {
				header[i] = canonicalHeader(c)
			}
			continue
		}
		fields := make(map[string]string, len(header))
		for i, name := range header {
			if name == "" || i >= len(cells) {
				continue
			}
			fields[name] = strings.TrimSpace(cells[i])
		}
		rows = append(rows, Row{Number: len(rows) + 2, Fields: fields})
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	return rows, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
