package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aanasc4/data-integration/config"
	"github.com/aanasc4/data-integration/extract"
	"github.com/aanasc4/data-integration/load"
	"github.com/aanasc4/data-integration/logger"
	"github.com/aanasc4/data-integration/utils"
	"github.com/google/uuid"
)

type Pipeline struct {
	DuckDB       *load.DuckDB
	Client       extract.Fetcher
	Logger       *slog.Logger
	RunID        uuid.UUID
	config       *config.Config
	timeProvider utils.TimeProvider
}

func NewPipeline(config *config.Config, logger *slog.Logger, timeProvider utils.TimeProvider) (*Pipeline, error) {
	db, err := load.NewDuckDB(config, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating DB database: %w", err)
	}

	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing warehouse schema: %w", err)
	}

	runID := uuid.New()
	return &Pipeline{
		DuckDB:       db,
		Client:       extract.NewITBIClient(config, logger),
		Logger:       logger.With("run_id", runID.String()),
		RunID:        runID,
		config:       config,
		timeProvider: timeProvider,
	}, nil
}

func (p *Pipeline) Close() {
	p.DuckDB.Close()
}

func (p *Pipeline) newOperationLog() *logger.OperationLog {
	return logger.NewOperationLog(p.timeProvider.Now)
}

func (p *Pipeline) extractor(pipelineType string) *extract.Extractor {
	return extract.NewExtractor(p.Client, p.config, pipelineType, p.Logger, p.timeProvider)
}

// extract runs the extraction and fails only when no year could be extracted.
func (p *Pipeline) extract(pipelineType string, oplog *logger.OperationLog) ([]*extract.Frame, error) {
	frames, err := p.extractor(pipelineType).ExtractAll(p.config.Extract.Sources, pipelineType, oplog)
	if len(frames) == 0 {
		if err != nil {
			return nil, fmt.Errorf("%w: no dataset extracted: %w", extract.ErrValidation, err)
		}
		return nil, fmt.Errorf("%w: no dataset extracted", extract.ErrValidation)
	}
	if err != nil {
		p.Logger.Warn("Continuing without the failed years", "error", err)
	}
	for _, d := range extract.Summary(frames).Datasets {
		p.Logger.Info(fmt.Sprintf("Extracted ITBI %s", d.Year),
			"records", d.Records,
			"columns", d.Columns,
			"null_values", d.NullValues)
	}
	return frames, nil
}

func (p *Pipeline) elapsed(start time.Time) time.Duration {
	return p.timeProvider.Now().Sub(start)
}
