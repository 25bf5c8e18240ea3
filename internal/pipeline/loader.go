package pipeline

import (
	"context"
	"fmt"

	"sparkify/internal/metrics"
	"sparkify/internal/storage"
)

// DefaultBatchSize is the number of rows handed to the repository per call
// when TableLoader.BatchSize is not set.
const DefaultBatchSize = 1000

// Valuer is an entity that knows its row in table column order.
type Valuer interface {
	Values() []any
}

// Rows converts entities into repository rows.
func Rows[T Valuer](xs []T) [][]any {
	out := make([][]any, len(xs))
	for i, x := range xs {
		out[i] = x.Values()
	}
	return out
}

// TableLoader appends rows to one table at a time.
//
// Loads are append-only: a row whose primary key already exists fails the
// load with a constraint error. With SkipExisting such rows are skipped
// instead. There is no transaction across batches or tables; rows written
// before a failure stay written.
type TableLoader struct {
	Repo         storage.Repository
	BatchSize    int
	SkipExisting bool
}

// Load writes rows into spec's table in BatchSize chunks and returns the
// number of rows the backend reported as written.
func (l *TableLoader) Load(ctx context.Context, spec storage.TableSpec, rows [][]any) (int64, error) {
	if l.Repo == nil {
		return 0, fmt.Errorf("load %s: Repo is required", spec.Name)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	batchSize := l.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	columns := spec.ColumnNames()
	var dedupe []string
	if l.SkipExisting {
		dedupe = spec.PrimaryKey()
	}

	var total int64
	batch := 0
	err := storage.EachChunk(rows, batchSize, func(part [][]any) error {
		batch++
		n, err := l.Repo.InsertRows(ctx, spec.Name, columns, part, dedupe)
		total += n
		metrics.RecordBatch(spec.Name)
		if err != nil {
			return fmt.Errorf("load %s batch %d: %w", spec.Name, batch, err)
		}
		return nil
	})

	metrics.RecordRecords(spec.Name+"_inserted", int(total))
	if err == nil && l.SkipExisting {
		metrics.RecordRecords(spec.Name+"_skipped", len(rows)-int(total))
	}
	return total, err
}
