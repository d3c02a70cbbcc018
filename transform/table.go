package transform

import (
	"strconv"
	"time"

	"github.com/aanasc4/data-integration/extract"
	"github.com/aanasc4/data-integration/load"
)

// SourceColumns are the typed source attributes, in output order.
var SourceColumns = []string{
	"valor_avaliacao", "bairro", "tipo_imovel", "data_transacao",
	"logradouro", "numero", "complemento", "cep",
	"area_terreno", "area_construida", "ano_construcao", "fracao_ideal",
	"valores_financiados_sfh",
}

// DerivedColumns are computed by the transform.
var DerivedColumns = []string{
	"valor_por_m2", "idade_imovel", "faixa_valor", "categoria_area",
	"periodo_construcao", "tem_financiamento",
	"ano_transacao", "mes_transacao", "trimestre",
}

// MetadataColumns close every transformed row.
var MetadataColumns = []string{extract.ColSourceYear, extract.ColExtractionTimestamp, extract.ColPipelineType}

// TransformedColumns is the fixed column order of a transformed table.
func TransformedColumns() []string {
	cols := make([]string, 0, len(SourceColumns)+len(DerivedColumns)+len(MetadataColumns))
	cols = append(cols, SourceColumns...)
	cols = append(cols, DerivedColumns...)
	return append(cols, MetadataColumns...)
}

// ToTable renders a result as text: `.` decimals, ISO dates, empty cells for nulls,
// the fixed transformed columns first and the extra source columns after them.
func ToTable(res Result) load.Table {
	columns := append(TransformedColumns(), res.ExtraColumns...)
	t := load.Table{Columns: columns, Rows: make([][]string, 0, len(res.Transactions))}

	extractedAt := ""
	if !res.ExtractedAt.IsZero() {
		extractedAt = res.ExtractedAt.Format(time.RFC3339)
	}

	for _, tx := range res.Transactions {
		row := []string{
			formatFloat(&tx.Value),
			tx.Neighborhood,
			tx.PropertyType,
			formatDate(tx.Date),
			tx.Street,
			tx.Number,
			tx.Complement,
			tx.PostalCode,
			formatFloat(tx.LandArea),
			formatFloat(tx.BuiltArea),
			formatInt(tx.ConstructionYear),
			formatFloat(tx.IdealFraction),
			formatFloat(tx.FinancedAmount),
			formatFloat(tx.ValuePerArea),
			formatInt(tx.PropertyAge),
			tx.ValueBucket,
			tx.AreaBucket,
			tx.ConstructionPeriod,
			strconv.FormatBool(tx.Financed),
			formatInt(tx.Year),
			formatInt(tx.Month),
			formatInt(tx.Quarter),
			tx.SourceYear,
			extractedAt,
			res.PipelineType,
		}
		for _, col := range res.ExtraColumns {
			row = append(row, tx.Extra[col])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format("2006-01-02")
}

// Batch wraps the result for the transformed loader.
func (r Result) Batch() load.Batch {
	return load.Batch{Year: r.Year, PipelineType: r.PipelineType, Table: ToTable(r)}
}
