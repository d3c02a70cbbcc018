package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aanasc4/data-integration/load"
	"github.com/jszwec/csvutil"
)

// Metadata columns appended to every extracted row.
const (
	ColSourceYear          = "source_year"
	ColExtractionTimestamp = "extraction_timestamp"
	ColSourceURL           = "source_url"
	ColPipelineType        = "pipeline_type"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// headerAliases maps source header names to their canonical column.
var headerAliases = map[string]string{
	"sfh": "valores_financiados_sfh",
}

// RawRecord is one source row, every attribute kept as text.
type RawRecord struct {
	ValorAvaliacao        string `csv:"valor_avaliacao"`
	Bairro                string `csv:"bairro"`
	TipoImovel            string `csv:"tipo_imovel"`
	DataTransacao         string `csv:"data_transacao"`
	Logradouro            string `csv:"logradouro"`
	Numero                string `csv:"numero"`
	Complemento           string `csv:"complemento"`
	CEP                   string `csv:"cep"`
	AreaTerreno           string `csv:"area_terreno"`
	AreaConstruida        string `csv:"area_construida"`
	AnoConstrucao         string `csv:"ano_construcao"`
	FracaoIdeal           string `csv:"fracao_ideal"`
	ValoresFinanciadosSFH string `csv:"valores_financiados_sfh"`

	// Extra holds the remaining source columns keyed by header name.
	Extra map[string]string `csv:"-"`
}

// Field returns the value of a column by its canonical name.
func (r RawRecord) Field(column string) string {
	switch column {
	case "valor_avaliacao":
		return r.ValorAvaliacao
	case "bairro":
		return r.Bairro
	case "tipo_imovel":
		return r.TipoImovel
	case "data_transacao":
		return r.DataTransacao
	case "logradouro":
		return r.Logradouro
	case "numero":
		return r.Numero
	case "complemento":
		return r.Complemento
	case "cep":
		return r.CEP
	case "area_terreno":
		return r.AreaTerreno
	case "area_construida":
		return r.AreaConstruida
	case "ano_construcao":
		return r.AnoConstrucao
	case "fracao_ideal":
		return r.FracaoIdeal
	case "valores_financiados_sfh":
		return r.ValoresFinanciadosSFH
	}
	return r.Extra[column]
}

// Frame is the parsed content of one yearly extract.
type Frame struct {
	Year         string
	SourceURL    string
	PipelineType string
	ExtractedAt  time.Time
	// Columns is the normalized source header, in file order.
	Columns []string
	Records []RawRecord
}

func (f *Frame) Len() int {
	return len(f.Records)
}

func (f *Frame) HasColumn(column string) bool {
	for _, c := range f.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Table renders the frame with its source columns followed by the metadata columns.
func (f *Frame) Table() load.Table {
	columns := append(append([]string(nil), f.Columns...),
		ColSourceYear, ColExtractionTimestamp, ColSourceURL, ColPipelineType)
	t := load.Table{Columns: columns, Rows: make([][]string, 0, len(f.Records))}
	ts := ""
	if !f.ExtractedAt.IsZero() {
		ts = f.ExtractedAt.Format(time.RFC3339)
	}
	for _, rec := range f.Records {
		row := make([]string, 0, len(columns))
		for _, c := range f.Columns {
			row = append(row, rec.Field(c))
		}
		row = append(row, f.Year, ts, f.SourceURL, f.PipelineType)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// NormalizeHeader trims and lower-cases a header name and applies the known renames.
func NormalizeHeader(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := headerAliases[n]; ok {
		return alias
	}
	return n
}

// ParseCSV decodes a delimited ITBI extract. Known columns land in the
// RawRecord fields, the others in Extra.
func ParseCSV(body []byte, delimiter rune) (*Frame, error) {
	body = bytes.TrimPrefix(body, utf8BOM)
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("received empty CSV data")
	}

	reader := csv.NewReader(bytes.NewReader(body))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rawHeader, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	header := normalizeHeaders(rawHeader)

	frame := &Frame{Columns: header}
	dec, err := csvutil.NewDecoder(&fixedWidthReader{r: reader, width: len(header)}, header...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder: %w", err)
	}

	for {
		var rec RawRecord
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode CSV record %d: %w", frame.Len()+1, err)
		}

		if unused := dec.Unused(); len(unused) > 0 {
			record := dec.Record()
			rec.Extra = make(map[string]string, len(unused))
			for _, i := range unused {
				rec.Extra[header[i]] = record[i]
			}
		}
		frame.Records = append(frame.Records, rec)
	}

	return frame, nil
}

// normalizeHeaders normalizes names and disambiguates repeated ones with a numeric suffix.
func normalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		n := NormalizeHeader(h)
		if n == "" {
			n = fmt.Sprintf("column_%d", i+1)
		}
		seen[n]++
		if seen[n] > 1 {
			n = fmt.Sprintf("%s_%d", n, seen[n])
		}
		out[i] = n
	}
	return out
}

// fixedWidthReader pads short records and truncates long ones to the header width.
type fixedWidthReader struct {
	r     *csv.Reader
	width int
}

func (f *fixedWidthReader) Read() ([]string, error) {
	for {
		record, err := f.r.Read()
		if err != nil {
			return nil, err
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" && f.width > 1 {
			continue
		}
		switch {
		case len(record) < f.width:
			record = append(record, make([]string, f.width-len(record))...)
		case len(record) > f.width:
			record = record[:f.width]
		}
		return record, nil
	}
}

// Batch wraps the frame for the raw loader.
func (f *Frame) Batch() load.Batch {
	return load.Batch{Year: f.Year, PipelineType: f.PipelineType, SourceURL: f.SourceURL, Table: f.Table()}
}
