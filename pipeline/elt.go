package pipeline

import (
	"fmt"
	"time"

	"github.com/aanasc4/data-integration/extract"
	"github.com/aanasc4/data-integration/load"
	"github.com/aanasc4/data-integration/logger"
	"github.com/aanasc4/data-integration/sqltransform"
)

type ELTSummary struct {
	RunID       string
	Extraction  extract.ExtractionSummary
	RawLoaded   int
	RawCounts   []load.RawCount
	Loads       []load.LoadMetadata
	Years       []sqltransform.YearResult
	Transformed int
	Operations  []logger.Operation
	Failures    int
	Duration    time.Duration
}

// RunELT extracts with minimal validation, loads the raw rows, transforms
// them inside the warehouse and creates the analysis views.
func (p *Pipeline) RunELT() (ELTSummary, error) {
	start := p.timeProvider.Now()
	summary := ELTSummary{RunID: p.RunID.String()}
	oplog := p.newOperationLog()
	p.Logger.Info("Starting ELT pipeline", "sources", len(p.config.Extract.Sources))

	frames, err := p.extract(extract.PipelineELT, oplog)
	if err != nil {
		return summary, err
	}
	summary.Extraction = extract.Summary(frames)
	if err := extract.Validate(frames, nil); err != nil {
		return summary, fmt.Errorf("extracted data failed validation: %w", err)
	}

	batches := make([]load.Batch, 0, len(frames))
	for _, f := range frames {
		batches = append(batches, f.Batch())
	}
	summary.RawLoaded, err = p.DuckDB.LoadAllRaw(batches, oplog)
	if err != nil {
		p.Logger.Warn("Some years failed to load", "error", err)
	}

	if summary.RawCounts, err = p.DuckDB.VerifyRaw(); err != nil {
		return summary, err
	}
	if summary.Loads, err = p.DuckDB.LoadHistory(); err != nil {
		return summary, err
	}
	for _, c := range summary.RawCounts {
		p.Logger.Info(fmt.Sprintf("Raw ITBI %s", c.SourceYear), "records", c.Records)
	}
	if err := p.DuckDB.CreateRawViews(); err != nil {
		return summary, err
	}

	transformer := sqltransform.New(p.DuckDB, p.Logger)
	summary.Years, err = transformer.TransformAllYears(oplog)
	if err != nil {
		if summary.Years == nil {
			p.Logger.Error("No year could be transformed", "error", err)
		} else {
			p.Logger.Warn("Some years failed to transform", "error", err)
		}
	}
	for _, y := range summary.Years {
		summary.Transformed += y.Transformed
	}

	if err := transformer.CreateFinalViews(); err != nil {
		return summary, err
	}

	summary.Operations = oplog.Entries()
	summary.Failures = oplog.Failures()
	summary.Duration = p.elapsed(start)
	p.Logger.Info("ELT pipeline finished",
		"raw_records", summary.RawLoaded,
		"transformed_records", summary.Transformed,
		"failures", summary.Failures,
		"duration", summary.Duration)
	return summary, nil
}
