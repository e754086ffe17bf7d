package obfuscate

import (
	"context"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dbmasq/dbmasq/internal/db/entries"
	"github.com/dbmasq/dbmasq/internal/domains"
	"github.com/dbmasq/dbmasq/internal/generators/transformers"
	"github.com/dbmasq/dbmasq/internal/obfuscate/checkpoint"
	"github.com/dbmasq/dbmasq/internal/obfuscate/refmap"
	"github.com/dbmasq/dbmasq/internal/obfuscate/valuecache"
	"github.com/dbmasq/dbmasq/internal/storages/directory"
)

type dataStoreMock struct {
	mock.Mock
}

func (s *dataStoreMock) CountRows(ctx context.Context, t *domains.TableConfig) (int64, error) {
	args := s.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}

func (s *dataStoreMock) ReadBatch(
	ctx context.Context, t *domains.TableConfig, offset, limit int64,
) ([]*entries.Row, error) {
	args := s.Called(ctx, t, offset, limit)
	if rows := args.Get(0); rows != nil {
		return rows.([]*entries.Row), args.Error(1)
	}
	return nil, args.Error(1)
}

func (s *dataStoreMock) UpdateBatch(
	ctx context.Context, t *domains.TableConfig, batch []*entries.Row,
) (*entries.UpdateResult, error) {
	args := s.Called(ctx, t, batch)
	if res := args.Get(0); res != nil {
		return res.(*entries.UpdateResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func testConfig(tables ...*domains.TableConfig) *domains.Config {
	cfg := &domains.Config{
		Obfuscation: domains.Obfuscation{
			GlobalSeed: "test-global-seed",
			Workers:    1,
			Tables:     tables,
		},
	}
	cfg.Obfuscation.SetDefaults()
	return cfg
}

func newTestRunner(t *testing.T, cfg *domains.Config, store DataStore, cp *checkpoint.Store) (*Runner, *valuecache.Cache) {
	t.Helper()
	generator, err := transformers.NewValueGenerator(&cfg.Obfuscation)
	require.NoError(t, err)
	cache := valuecache.New(cfg.Obfuscation.MaxCacheEntries, generator.Policy)
	rm := refmap.NewMapper(cfg.Obfuscation.Relationships)
	return NewRunner(cfg, store, generator, cache, rm, cp), cache
}

func strPtr(s string) *string { return &s }

func nameRows(values ...*string) []*entries.Row {
	rows := make([]*entries.Row, len(values))
	for i, v := range values {
		rows[i] = &entries.Row{
			Keys:   []string{strconv.Itoa(i + 1)},
			Values: map[string]*string{"first_name": v},
		}
	}
	return rows
}

func okResult(updated int64) *entries.UpdateResult {
	return &entries.UpdateResult{Updated: updated}
}

func TestRunner_same_original_maps_to_same_value(t *testing.T) {
	tbl := &domains.TableConfig{
		Name:       "person",
		PrimaryKey: []string{"id"},
		Columns:    []*domains.ColumnConfig{{Name: "first_name", Type: "FirstName"}},
	}
	cfg := testConfig(tbl)

	store := &dataStoreMock{}
	store.On("CountRows", mock.Anything, tbl).Return(int64(3), nil)
	store.On("ReadBatch", mock.Anything, tbl, int64(0), int64(3)).
		Return(nameRows(strPtr("John"), strPtr("Jane"), strPtr("John")), nil)

	var written []*entries.Row
	store.On("UpdateBatch", mock.Anything, tbl, mock.Anything).
		Run(func(args mock.Arguments) {
			written = args.Get(2).([]*entries.Row)
		}).
		Return(okResult(3), nil)

	runner, cache := newTestRunner(t, cfg, store, nil)
	res, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, int64(3), res.RowsRead)
	require.Equal(t, int64(3), res.RowsUpdated)

	require.Len(t, written, 3)
	first := *written[0].Values["first_name"]
	second := *written[1].Values["first_name"]
	third := *written[2].Values["first_name"]
	require.Equal(t, first, third)
	require.NotEqual(t, "John", first)
	require.NotEqual(t, "Jane", second)
	require.Contains(t, transformers.DefaultFirstNames, first)

	// two distinct originals, two cached mappings
	require.Equal(t, 2, cache.Len())
	store.AssertExpectations(t)
}

func TestRunner_null_passes_through(t *testing.T) {
	tbl := &domains.TableConfig{
		Name:       "person",
		PrimaryKey: []string{"id"},
		Columns:    []*domains.ColumnConfig{{Name: "first_name", Type: "FirstName"}},
	}
	cfg := testConfig(tbl)

	store := &dataStoreMock{}
	store.On("CountRows", mock.Anything, tbl).Return(int64(2), nil)
	store.On("ReadBatch", mock.Anything, tbl, int64(0), int64(2)).
		Return(nameRows(nil, strPtr("John")), nil)

	var written []*entries.Row
	store.On("UpdateBatch", mock.Anything, tbl, mock.Anything).
		Run(func(args mock.Arguments) {
			written = args.Get(2).([]*entries.Row)
		}).
		Return(okResult(2), nil)

	runner, _ := newTestRunner(t, cfg, store, nil)
	res, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)

	require.Len(t, written, 2)
	require.Nil(t, written[0].Values["first_name"])
	require.NotNil(t, written[1].Values["first_name"])
}

func TestRunner_preserve_length(t *testing.T) {
	tbl := &domains.TableConfig{
		Name:       "person",
		PrimaryKey: []string{"id"},
		Columns: []*domains.ColumnConfig{
			{Name: "first_name", Type: "FirstName", PreserveLength: true},
		},
	}
	cfg := testConfig(tbl)

	store := &dataStoreMock{}
	store.On("CountRows", mock.Anything, tbl).Return(int64(2), nil)
	store.On("ReadBatch", mock.Anything, tbl, int64(0), int64(2)).
		Return(nameRows(strPtr("Jo"), strPtr("Bartholomew")), nil)

	var written []*entries.Row
	store.On("UpdateBatch", mock.Anything, tbl, mock.Anything).
		Run(func(args mock.Arguments) {
			written = args.Get(2).([]*entries.Row)
		}).
		Return(okResult(2), nil)

	runner, _ := newTestRunner(t, cfg, store, nil)
	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, *written[0].Values["first_name"], 2)
	require.Len(t, *written[1].Values["first_name"], len("Bartholomew"))
}

func TestRunner_fallback_policies(t *testing.T) {
	newDateTable := func(fallback, def string) *domains.TableConfig {
		return &domains.TableConfig{
			Name:       "person",
			PrimaryKey: []string{"id"},
			Columns: []*domains.ColumnConfig{
				{Name: "first_name", Type: "Date", Fallback: fallback, Default: def},
			},
		}
	}

	run := func(t *testing.T, tbl *domains.TableConfig) (*RunResult, []*entries.Row, *dataStoreMock) {
		cfg := testConfig(tbl)
		store := &dataStoreMock{}
		store.On("CountRows", mock.Anything, tbl).Return(int64(1), nil)
		store.On("ReadBatch", mock.Anything, tbl, int64(0), int64(1)).
			Return(nameRows(strPtr("not-a-date")), nil)

		var written []*entries.Row
		store.On("UpdateBatch", mock.Anything, tbl, mock.Anything).
			Run(func(args mock.Arguments) {
				written = args.Get(2).([]*entries.Row)
			}).
			Return(okResult(1), nil).
			Maybe()

		runner, _ := newTestRunner(t, cfg, store, nil)
		res, err := runner.Run(context.Background())
		require.NoError(t, err)
		return res, written, store
	}

	t.Run("use_original_is_default", func(t *testing.T) {
		_, written, _ := run(t, newDateTable("", ""))
		require.Len(t, written, 1)
		require.Equal(t, "not-a-date", *written[0].Values["first_name"])
	})

	t.Run("use_default", func(t *testing.T) {
		_, written, _ := run(t, newDateTable(domains.FallbackUseDefault, "1970-01-01"))
		require.Len(t, written, 1)
		require.Equal(t, "1970-01-01", *written[0].Values["first_name"])
	})

	t.Run("skip_drops_row", func(t *testing.T) {
		res, _, store := run(t, newDateTable(domains.FallbackSkip, ""))
		require.True(t, res.Success)
		require.Equal(t, int64(1), res.RowsSkipped)
		store.AssertNotCalled(t, "UpdateBatch", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRunner_dry_run_never_writes(t *testing.T) {
	tbl := &domains.TableConfig{
		Name:       "person",
		PrimaryKey: []string{"id"},
		Columns:    []*domains.ColumnConfig{{Name: "first_name", Type: "FirstName"}},
	}
	cfg := testConfig(tbl)
	cfg.Obfuscation.DryRun = true

	store := &dataStoreMock{}
	store.On("CountRows", mock.Anything, tbl).Return(int64(1), nil)
	store.On("ReadBatch", mock.Anything, tbl, int64(0), int64(1)).
		Return(nameRows(strPtr("John")), nil)

	st, err := directory.NewStorage(&directory.Config{Path: t.TempDir()})
	require.NoError(t, err)
	cp := checkpoint.NewStore(st, checkpoint.DefaultFileName)

	runner, _ := newTestRunner(t, cfg, store, cp)
	res, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	require.True(t, res.DryRun)
	require.Equal(t, int64(1), res.RowsRead)
	require.Equal(t, int64(0), res.RowsUpdated)
	store.AssertNotCalled(t, "UpdateBatch", mock.Anything, mock.Anything, mock.Anything)

	// dry run leaves no checkpoint behind
	exists, err := st.Exists(context.Background(), checkpoint.DefaultFileName)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRunner_resumes_from_checkpoint(t *testing.T) {
	tbl := &domains.TableConfig{
		Name:       "person",
		PrimaryKey: []string{"id"},
		BatchSize:  100,
		Columns:    []*domains.ColumnConfig{{Name: "first_name", Type: "FirstName"}},
	}
	cfg := testConfig(tbl)

	st, err := directory.NewStorage(&directory.Config{Path: t.TempDir()})
	require.NoError(t, err)

	hash, err := cfg.Obfuscation.Hash()
	require.NoError(t, err)
	prev := checkpoint.NewStore(st, checkpoint.DefaultFileName)
	require.NoError(t, prev.Begin(context.Background(), &checkpoint.State{ConfigHash: hash, RunID: "run-prev"}))
	require.NoError(t, prev.Advance(context.Background(), "public.person", 100, 100))

	store := &dataStoreMock{}
	store.On("CountRows", mock.Anything, tbl).Return(int64(150), nil)
	store.On("ReadBatch", mock.Anything, tbl, int64(100), int64(50)).
		Return(nameRows(strPtr("John")), nil)
	store.On("UpdateBatch", mock.Anything, tbl, mock.Anything).Return(okResult(1), nil)

	runner, _ := newTestRunner(t, cfg, store, checkpoint.NewStore(st, checkpoint.DefaultFileName))
	res, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "run-prev", res.RunID)

	// only the remaining range was read
	store.AssertNotCalled(t, "ReadBatch", mock.Anything, tbl, int64(0), mock.Anything)
	store.AssertExpectations(t)

	// the completed run clears its checkpoint
	exists, err := st.Exists(context.Background(), checkpoint.DefaultFileName)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRunner_failed_table_does_not_stop_others(t *testing.T) {
	broken := &domains.TableConfig{
		Name:       "broken",
		Priority:   1,
		PrimaryKey: []string{"id"},
		Columns:    []*domains.ColumnConfig{{Name: "first_name", Type: "FirstName"}},
	}
	healthy := &domains.TableConfig{
		Name:       "healthy",
		Priority:   2,
		PrimaryKey: []string{"id"},
		Columns:    []*domains.ColumnConfig{{Name: "first_name", Type: "FirstName"}},
	}
	cfg := testConfig(broken, healthy)

	store := &dataStoreMock{}
	store.On("CountRows", mock.Anything, broken).Return(int64(0), errors.New("connection refused"))
	store.On("CountRows", mock.Anything, healthy).Return(int64(1), nil)
	store.On("ReadBatch", mock.Anything, healthy, int64(0), int64(1)).
		Return(nameRows(strPtr("John")), nil)
	store.On("UpdateBatch", mock.Anything, healthy, mock.Anything).Return(okResult(1), nil)

	runner, _ := newTestRunner(t, cfg, store, nil)
	res, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	require.Contains(t, res.Errors[0], "connection refused")

	require.Equal(t, TableStatusFailed, res.Tables[0].Status)
	require.Equal(t, TableStatusCompleted, res.Tables[1].Status)
	store.AssertExpectations(t)
}

func TestRunner_failed_rows_are_collected(t *testing.T) {
	tbl := &domains.TableConfig{
		Name:       "person",
		PrimaryKey: []string{"id"},
		Columns:    []*domains.ColumnConfig{{Name: "first_name", Type: "FirstName"}},
	}
	cfg := testConfig(tbl)

	store := &dataStoreMock{}
	store.On("CountRows", mock.Anything, tbl).Return(int64(2), nil)
	store.On("ReadBatch", mock.Anything, tbl, int64(0), int64(2)).
		Return(nameRows(strPtr("John"), strPtr("Jane")), nil)
	store.On("UpdateBatch", mock.Anything, tbl, mock.Anything).Return(&entries.UpdateResult{
		Updated: 1,
		Failed: []*entries.FailedRow{
			{Table: "public.person", Keys: []string{"2"}, Reason: "duplicate key value"},
		},
	}, nil)

	runner, _ := newTestRunner(t, cfg, store, nil)
	res, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, int64(1), res.RowsFailed)
	require.Len(t, res.FailedRows(), 1)
	require.Equal(t, []string{"2"}, res.FailedRows()[0].Keys)
}

func TestRunner_relationship_aligns_tables(t *testing.T) {
	person := &domains.TableConfig{
		Name:       "person",
		Priority:   1,
		PrimaryKey: []string{"id"},
		Columns:    []*domains.ColumnConfig{{Name: "email", Type: "Email"}},
	}
	orders := &domains.TableConfig{
		Name:       "orders",
		Priority:   2,
		PrimaryKey: []string{"id"},
		// a different type tag would generate a different value; the
		// relationship must override it with the canonical mapping
		Columns: []*domains.ColumnConfig{{Name: "customer_email", Type: "UserName"}},
	}
	cfg := testConfig(person, orders)
	cfg.Obfuscation.Relationships = []*domains.Relationship{
		{
			Primary: domains.TableColumn{Table: "person", Column: "email"},
			Related: []domains.TableColumn{{Table: "orders", Column: "customer_email"}},
		},
	}

	emailRow := func(column string) []*entries.Row {
		return []*entries.Row{{
			Keys:   []string{"1"},
			Values: map[string]*string{column: strPtr("john@example.com")},
		}}
	}

	store := &dataStoreMock{}
	store.On("CountRows", mock.Anything, person).Return(int64(1), nil)
	store.On("CountRows", mock.Anything, orders).Return(int64(1), nil)
	store.On("ReadBatch", mock.Anything, person, int64(0), int64(1)).Return(emailRow("email"), nil)
	store.On("ReadBatch", mock.Anything, orders, int64(0), int64(1)).Return(emailRow("customer_email"), nil)

	written := make(map[string]string)
	store.On("UpdateBatch", mock.Anything, person, mock.Anything).
		Run(func(args mock.Arguments) {
			written["person"] = *args.Get(2).([]*entries.Row)[0].Values["email"]
		}).
		Return(okResult(1), nil)
	store.On("UpdateBatch", mock.Anything, orders, mock.Anything).
		Run(func(args mock.Arguments) {
			written["orders"] = *args.Get(2).([]*entries.Row)[0].Values["customer_email"]
		}).
		Return(okResult(1), nil)

	runner, _ := newTestRunner(t, cfg, store, nil)
	res, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, written["person"], written["orders"])
	require.NotEqual(t, "john@example.com", written["person"])
}

func TestSortTables_priority_then_name(t *testing.T) {
	tables := []*domains.TableConfig{
		{Name: "zeta", Priority: 1},
		{Name: "alpha", Priority: 2},
		{Name: "beta", Priority: 1},
	}
	sorted := sortTables(tables)
	require.Equal(t, "beta", sorted[0].Name)
	require.Equal(t, "zeta", sorted[1].Name)
	require.Equal(t, "alpha", sorted[2].Name)
	// input order untouched
	require.Equal(t, "zeta", tables[0].Name)
}

func TestFrontier_contiguous_advance(t *testing.T) {
	f := newFrontier(0)

	// the middle batch finishing first must not advance anything
	_, _, advanced := f.complete(100, 200, 100)
	require.False(t, advanced)

	end, rows, advanced := f.complete(0, 100, 100)
	require.True(t, advanced)
	require.Equal(t, int64(200), end)
	require.Equal(t, int64(200), rows)

	end, rows, advanced = f.complete(200, 250, 50)
	require.True(t, advanced)
	require.Equal(t, int64(250), end)
	require.Equal(t, int64(50), rows)
}
