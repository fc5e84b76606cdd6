// Package mapper drives the schema export across the target databases.
package mapper

import (
	"context"

	"go.uber.org/zap"

	"github.com/snowmapper/snowmapper/internal/retry"
	"github.com/snowmapper/snowmapper/internal/schema"
)

// CatalogReader is the metadata source the run iterates over.
type CatalogReader interface {
	ListDatabases(ctx context.Context) ([]schema.DatabaseInfo, error)
	ListColumns(ctx context.Context, database string) ([]schema.ColumnRow, error)
}

// ArtifactWriter persists one database's table documents.
type ArtifactWriter interface {
	Write(database string, tables []schema.TableInfo) error
}

// Options control target selection and the failure policy of a run.
type Options struct {
	// Databases restricts the run to these names. Empty means every
	// accessible database.
	Databases []string
	// SkipFailed logs and skips a failing database instead of aborting.
	SkipFailed bool
	// Retry wraps every catalog read and artifact write.
	Retry retry.Policy
}

// Mapper is the run orchestrator: it resolves the target database list and
// processes each database sequentially through the catalog reader,
// aggregator and writer.
type Mapper struct {
	catalog CatalogReader
	writer  ArtifactWriter
	opts    Options
	log     *zap.Logger
}

func New(catalog CatalogReader, writer ArtifactWriter, opts Options, log *zap.Logger) *Mapper {
	return &Mapper{catalog: catalog, writer: writer, opts: opts, log: log}
}

// Run processes every target database in order. Without SkipFailed the
// first failure aborts the run and is returned; with it, failed databases
// are logged and skipped and Run still returns nil once every database has
// been attempted.
func (m *Mapper) Run(ctx context.Context) error {
	targets, err := m.resolveTargets(ctx)
	if err != nil {
		return err
	}

	total := len(targets)
	for i, db := range targets {
		m.log.Info("processing database",
			zap.String("database", db.Name),
			zap.Int("processed", i),
			zap.Int("total", total))

		if err := m.exportDatabase(ctx, db.Name); err != nil {
			if !m.opts.SkipFailed {
				return err
			}
			m.log.Error("skipping database after failure",
				zap.String("database", db.Name),
				zap.Error(err))
			continue
		}

		m.log.Info("processed database",
			zap.String("database", db.Name),
			zap.Int("processed", i+1),
			zap.Int("total", total))
	}

	m.log.Info("schema export complete", zap.Int("total", total))
	return nil
}

// resolveTargets turns an explicit database list into placeholder records,
// or asks the catalog for every accessible database.
func (m *Mapper) resolveTargets(ctx context.Context) ([]schema.DatabaseInfo, error) {
	if len(m.opts.Databases) > 0 {
		targets := make([]schema.DatabaseInfo, 0, len(m.opts.Databases))
		for _, name := range m.opts.Databases {
			targets = append(targets, schema.DatabaseInfo{Name: name})
		}
		return targets, nil
	}
	return retry.Do(ctx, m.log, m.opts.Retry, "list databases", m.catalog.ListDatabases)
}

func (m *Mapper) exportDatabase(ctx context.Context, database string) error {
	rows, err := retry.Do(ctx, m.log, m.opts.Retry, "list columns for "+database,
		func(ctx context.Context) ([]schema.ColumnRow, error) {
			return m.catalog.ListColumns(ctx, database)
		})
	if err != nil {
		return err
	}

	tables, err := schema.Aggregate(database, rows)
	if err != nil {
		return err
	}

	return retry.Run(ctx, m.log, m.opts.Retry, "write output for "+database,
		func(ctx context.Context) error {
			return m.writer.Write(database, tables)
		})
}
