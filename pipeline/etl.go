package pipeline

import (
	"fmt"
	"time"

	"github.com/aanasc4/data-integration/extract"
	"github.com/aanasc4/data-integration/load"
	"github.com/aanasc4/data-integration/logger"
	"github.com/aanasc4/data-integration/report"
	"github.com/aanasc4/data-integration/transform"
)

// ETLYear is the outcome of one year in the ETL run.
type ETLYear struct {
	Year        string
	Extracted   int
	Transformed int
	Dropped     int
	Loaded      int
}

type ETLSummary struct {
	RunID        string
	Extraction   extract.ExtractionSummary
	Years        []ETLYear
	TotalRecords int
	Columns      int
	Files        load.SavedFiles
	YearFiles    []string
	MetadataFile string
	Quality      report.QualityFiles
	Operations   []logger.Operation
	Failures     int
	Duration     time.Duration
}

// RunETL extracts with strict validation, transforms in process, writes the
// consolidated files, loads the rows tagged ETL and writes the quality report.
func (p *Pipeline) RunETL() (ETLSummary, error) {
	start := p.timeProvider.Now()
	summary := ETLSummary{RunID: p.RunID.String()}
	oplog := p.newOperationLog()
	p.Logger.Info("Starting ETL pipeline", "sources", len(p.config.Extract.Sources))

	frames, err := p.extract(extract.PipelineETL, oplog)
	if err != nil {
		return summary, err
	}
	summary.Extraction = extract.Summary(frames)

	required := p.config.Extract.RequiredColumns
	if len(required) == 0 {
		required = extract.DefaultRequiredColumns
	}
	if err := extract.Validate(frames, required); err != nil {
		return summary, fmt.Errorf("extracted data failed validation: %w", err)
	}

	tables := make([]load.Table, 0, len(frames))
	batches := make([]load.Batch, 0, len(frames))
	for _, frame := range frames {
		res := transform.TransformFrame(frame)
		dataset := fmt.Sprintf("itbi_%s", frame.Year)
		oplog.Success("transform", dataset, len(res.Transactions))
		p.Logger.Info(fmt.Sprintf("Transformed ITBI %s", frame.Year),
			"records", len(res.Transactions),
			"dropped", res.Dropped,
			"repaired", res.Repaired)

		batch := res.Batch()
		tables = append(tables, batch.Table)
		batches = append(batches, batch)
		summary.Years = append(summary.Years, ETLYear{
			Year:        frame.Year,
			Extracted:   frame.Len(),
			Transformed: len(res.Transactions),
			Dropped:     res.Dropped,
		})
	}

	consolidated := load.Concat(tables...)
	summary.TotalRecords = consolidated.Len()
	summary.Columns = len(consolidated.Columns)
	p.Logger.Info("Consolidated datasets", "records", consolidated.Len(), "columns", len(consolidated.Columns))

	now := p.timeProvider.Now()
	out := p.config.Output
	if summary.Files, err = load.SaveConsolidated(consolidated, out.DatasetsDir, out.Filename, now, out.Excel); err != nil {
		return summary, fmt.Errorf("error saving consolidated dataset: %w", err)
	}
	if summary.YearFiles, err = load.SaveDatasetsSeparately(batches, out.DatasetsDir); err != nil {
		return summary, fmt.Errorf("error saving yearly datasets: %w", err)
	}
	if summary.MetadataFile, err = load.SaveMetadata(consolidated, out.DatasetsDir, now); err != nil {
		return summary, fmt.Errorf("error saving dataset metadata: %w", err)
	}
	oplog.Success("save", out.Filename, consolidated.Len())

	for i, b := range batches {
		dataset := fmt.Sprintf("itbi_%s", b.Year)
		n, err := p.DuckDB.LoadTransformed(b)
		if err != nil {
			oplog.Failure("load", dataset, err)
			return summary, fmt.Errorf("error loading transformed ITBI %s: %w", b.Year, err)
		}
		oplog.Success("load", dataset, n)
		summary.Years[i].Loaded = n
	}

	quality := report.CheckQuality(consolidated, oplog, now)
	if summary.Quality, err = report.WriteQualityReport(quality, out.QualityDir); err != nil {
		return summary, fmt.Errorf("error writing quality report: %w", err)
	}
	passed, total := quality.ChecksPassed()
	p.Logger.Info("Quality report written",
		"path", summary.Quality.JSON,
		"completeness", quality.Completeness.Percentage,
		"duplicates", quality.Duplicates.Total,
		"checks", fmt.Sprintf("%d/%d", passed, total))

	summary.Operations = oplog.Entries()
	summary.Failures = oplog.Failures()
	summary.Duration = p.elapsed(start)
	p.Logger.Info("ETL pipeline finished", "records", summary.TotalRecords, "failures", summary.Failures, "duration", summary.Duration)
	return summary, nil
}
