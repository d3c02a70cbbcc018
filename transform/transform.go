package transform

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aanasc4/data-integration/extract"
)

var ErrInvalidValue = errors.New("invalid assessed value")

// DefaultComplement replaces a missing complemento.
const DefaultComplement = "Sem complemento"

// droppedColumns are redundant for a single-city dataset.
var droppedColumns = map[string]bool{"cidade": true, "uf": true}

// TextColumns get the encoding repair.
var TextColumns = []string{"bairro", "tipo_imovel", "logradouro", "numero", "complemento", "cep"}

// Transaction is a typed and enriched ITBI record.
type Transaction struct {
	SourceYear string

	Value            float64
	Neighborhood     string
	PropertyType     string
	Date             *time.Time
	Street           string
	Number           string
	Complement       string
	PostalCode       string
	LandArea         *float64
	BuiltArea        *float64
	ConstructionYear *int
	IdealFraction    *float64
	FinancedAmount   *float64

	ValuePerArea       *float64
	PropertyAge        *int
	ValueBucket        string
	AreaBucket         string
	ConstructionPeriod string
	Financed           bool
	Year               *int
	Month              *int
	Quarter            *int

	// Extra keeps the non-redundant source columns the transform does not type.
	Extra map[string]string
	// Repaired flags the text columns whose encoding was repaired.
	Repaired map[string]bool
}

// TransformRecord types and enriches one raw row. Rows whose assessed value
// is missing, unparseable or not positive return ErrInvalidValue.
func TransformRecord(raw extract.RawRecord) (Transaction, error) {
	value, err := ParseBrazilianNumber(raw.ValorAvaliacao)
	if err != nil {
		return Transaction{}, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	if value == nil {
		return Transaction{}, fmt.Errorf("%w: missing", ErrInvalidValue)
	}
	if *value <= 0 {
		return Transaction{}, fmt.Errorf("%w: %v is not positive", ErrInvalidValue, *value)
	}

	tx := Transaction{Value: *value}

	text := make(map[string]string, len(TextColumns))
	for _, col := range TextColumns {
		repaired, ok := RepairEncoding(raw.Field(col))
		if ok {
			if tx.Repaired == nil {
				tx.Repaired = make(map[string]bool)
			}
			tx.Repaired[col] = true
		}
		text[col] = repaired
	}
	tx.Neighborhood = text["bairro"]
	tx.PropertyType = text["tipo_imovel"]
	tx.Street = text["logradouro"]
	tx.Number = text["numero"]
	tx.PostalCode = text["cep"]
	tx.Complement = text["complemento"]
	if isMissing(strings.TrimSpace(tx.Complement)) {
		tx.Complement = DefaultComplement
	}

	// Secondary numeric fields become null when they do not parse.
	tx.LandArea, _ = ParseBrazilianNumber(raw.AreaTerreno)
	tx.BuiltArea, _ = ParseBrazilianNumber(raw.AreaConstruida)
	tx.IdealFraction, _ = ParseBrazilianNumber(raw.FracaoIdeal)
	tx.FinancedAmount, _ = ParseBrazilianNumber(raw.ValoresFinanciadosSFH)
	tx.ConstructionYear = ParseYear(raw.AnoConstrucao)
	tx.Date = ParseDate(raw.DataTransacao)

	tx.Year, tx.Month, tx.Quarter = DateParts(tx.Date)
	tx.ValuePerArea = ValuePerArea(tx.Value, tx.BuiltArea)
	tx.PropertyAge = PropertyAge(tx.Year, tx.ConstructionYear)
	tx.Financed = HasFinancing(tx.FinancedAmount)
	tx.ValueBucket = ValueBucket(&tx.Value)
	tx.AreaBucket = AreaBucket(tx.BuiltArea)
	tx.ConstructionPeriod = ConstructionPeriod(tx.ConstructionYear)

	for col, v := range raw.Extra {
		if droppedColumns[col] {
			continue
		}
		if tx.Extra == nil {
			tx.Extra = make(map[string]string)
		}
		repaired, ok := RepairEncoding(v)
		if ok {
			if tx.Repaired == nil {
				tx.Repaired = make(map[string]bool)
			}
			tx.Repaired[col] = true
		}
		tx.Extra[col] = repaired
	}

	return tx, nil
}

// Result is the transformed content of one yearly frame.
type Result struct {
	Year         string
	PipelineType string
	ExtractedAt  time.Time
	Transactions []Transaction
	// Dropped counts rows excluded for an invalid assessed value.
	Dropped int
	// NullCounts counts nulls per transformed column.
	NullCounts map[string]int
	// Repaired counts encoding repairs per column.
	Repaired map[string]int
	// ExtraColumns are the kept source columns outside the typed schema, in file order.
	ExtraColumns []string
}

// TransformFrame transforms every row of a frame. Row failures are counted, not returned.
func TransformFrame(frame *extract.Frame) Result {
	res := Result{
		Year:         frame.Year,
		PipelineType: frame.PipelineType,
		ExtractedAt:  frame.ExtractedAt,
		Transactions: make([]Transaction, 0, frame.Len()),
		Repaired:     make(map[string]int),
	}

	for _, col := range frame.Columns {
		if !droppedColumns[col] && !isTypedColumn(col) {
			res.ExtraColumns = append(res.ExtraColumns, col)
		}
	}

	for _, raw := range frame.Records {
		tx, err := TransformRecord(raw)
		if err != nil {
			res.Dropped++
			continue
		}
		tx.SourceYear = frame.Year
		for col := range tx.Repaired {
			res.Repaired[col]++
		}
		res.Transactions = append(res.Transactions, tx)
	}

	res.NullCounts = ToTable(res).NullCounts()
	return res
}

func isTypedColumn(col string) bool {
	for _, c := range SourceColumns {
		if c == col {
			return true
		}
	}
	return false
}
