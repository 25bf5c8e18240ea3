package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sparkify/internal/etlerr"
	"sparkify/internal/metrics"
	"sparkify/internal/model"
	"sparkify/internal/schema"
	"sparkify/internal/storage"
)

type insertCall struct {
	table   string
	columns []string
	rows    int
	dedupe  []string
}

type fakeRepo struct {
	ensured []string
	inserts []insertCall
	closed  int

	// failOn makes InsertRows fail for that table.
	failOn  string
	failErr error

	// skip makes InsertRows report that many fewer rows written per call.
	skip int
}

func (r *fakeRepo) Close() { r.closed++ }

func (r *fakeRepo) EnsureTables(ctx context.Context, tables []storage.TableSpec) error {
	for _, t := range tables {
		r.ensured = append(r.ensured, t.Name)
	}
	return nil
}

func (r *fakeRepo) InsertRows(ctx context.Context, table string, columns []string, rows [][]any, dedupeColumns []string) (int64, error) {
	r.inserts = append(r.inserts, insertCall{table: table, columns: columns, rows: len(rows), dedupe: dedupeColumns})
	if table == r.failOn {
		return 0, r.failErr
	}
	return int64(max(len(rows)-r.skip, 0)), nil
}

func (r *fakeRepo) tables() []string {
	out := make([]string, 0, len(r.inserts))
	for _, c := range r.inserts {
		if len(out) == 0 || out[len(out)-1] != c.table {
			out = append(out, c.table)
		}
	}
	return out
}

type countingBackend struct {
	counters map[string]float64
}

func (b *countingBackend) IncCounter(name string, delta float64, labels metrics.Labels) {
	b.counters[name+"/"+labels["kind"]+labels["table"]] += delta
}
func (b *countingBackend) ObserveHistogram(string, float64, metrics.Labels) {}
func (b *countingBackend) Flush() error                                     { return nil }

func userRows(n int) [][]any {
	users := make([]model.User, n)
	for i := range users {
		users[i] = model.User{UserID: int64(i), FirstName: "F", LastName: "L", Gender: "M", Level: "free"}
	}
	return Rows(users)
}

func TestTableLoader_ChunksByBatchSize(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	l := &TableLoader{Repo: repo, BatchSize: 2}
	spec, _ := schema.Table(schema.Users)

	n, err := l.Load(context.Background(), spec, userRows(5))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	require.Len(t, repo.inserts, 3)
	assert.Equal(t, []int{2, 2, 1}, []int{repo.inserts[0].rows, repo.inserts[1].rows, repo.inserts[2].rows})
	assert.Equal(t, []string{"user_id", "first_name", "last_name", "gender", "level"}, repo.inserts[0].columns)
	assert.Nil(t, repo.inserts[0].dedupe, "append-only loads must not dedupe")
}

func TestTableLoader_DefaultsAndEmpty(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	l := &TableLoader{Repo: repo}
	spec, _ := schema.Table(schema.Users)

	n, err := l.Load(context.Background(), spec, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, repo.inserts, "no rows means no repository call")

	_, err = l.Load(context.Background(), spec, userRows(DefaultBatchSize+1))
	require.NoError(t, err)
	assert.Len(t, repo.inserts, 2)

	_, err = (&TableLoader{}).Load(context.Background(), spec, userRows(1))
	assert.Error(t, err)
}

func TestTableLoader_SkipExistingUsesPrimaryKey(t *testing.T) {
	t.Parallel()

	repo := &fakeRepo{}
	l := &TableLoader{Repo: repo, SkipExisting: true}
	spec, _ := schema.Table(schema.Users)

	_, err := l.Load(context.Background(), spec, userRows(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"user_id", "level"}, repo.inserts[0].dedupe)
}

func TestTableLoader_ErrorKeepsKindAndNamesBatch(t *testing.T) {
	t.Parallel()

	cause := etlerr.Constraint("insert users", errors.New("duplicate key"))
	repo := &fakeRepo{failOn: schema.Users, failErr: cause}
	l := &TableLoader{Repo: repo, BatchSize: 10}
	spec, _ := schema.Table(schema.Users)

	_, err := l.Load(context.Background(), spec, userRows(3))
	require.Error(t, err)
	assert.True(t, etlerr.Is(err, etlerr.KindConstraint))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "load users batch 1")
}

// Swaps the process-wide metrics backend; not parallel.
func TestTableLoader_RecordsMetrics(t *testing.T) {
	b := &countingBackend{counters: map[string]float64{}}
	metrics.SetBackend(b)
	t.Cleanup(func() { metrics.SetBackend(nil) })

	repo := &fakeRepo{skip: 1}
	l := &TableLoader{Repo: repo, BatchSize: 2, SkipExisting: true}
	spec, _ := schema.Table(schema.Users)

	n, err := l.Load(context.Background(), spec, userRows(4))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	assert.Equal(t, 2.0, b.counters[metrics.BatchesTotal+"/users"])
	assert.Equal(t, 2.0, b.counters[metrics.RecordsTotal+"/users_inserted"])
	assert.Equal(t, 2.0, b.counters[metrics.RecordsTotal+"/users_skipped"])
}
