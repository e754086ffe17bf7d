// Copyright 2025 Dbmasq
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dbmasq/dbmasq/internal/db/entries"
	"github.com/dbmasq/dbmasq/internal/domains"
)

const uniqueViolationCode = "23505"

// Store is the bulk data access layer over a connection pool. Reads return
// primary-key-ordered windows; writes go through a staging table and a single
// set-based merge, degrading to row-by-row updates on uniqueness conflicts.
type Store struct {
	pool         *pgxpool.Pool
	timeout      time.Duration
	sqlBatchSize int

	typesMx sync.Mutex
	types   map[string]map[string]string
}

func NewStore(ctx context.Context, cfg *domains.DatabaseConfig, sqlBatchSize int) (*Store, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, cfg.URI())
	if err != nil {
		return nil, fmt.Errorf("cannot create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}
	return &Store{
		pool:         pool,
		timeout:      timeout,
		sqlBatchSize: sqlBatchSize,
		types:        make(map[string]map[string]string),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) CountRows(ctx context.Context, t *domains.TableConfig) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var count int64
	if err := s.pool.QueryRow(ctx, buildCountQuery(t)).Scan(&count); err != nil {
		return 0, errors.Wrapf(err, "error counting rows of %s", t.QualifiedName())
	}
	return count, nil
}

// enabledColumns returns the column names the plan transforms, in config order.
func enabledColumns(t *domains.TableConfig) []string {
	res := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c.IsEnabled() {
			res = append(res, c.Name)
		}
	}
	return res
}

func (s *Store) ReadBatch(ctx context.Context, t *domains.TableConfig, offset, limit int64) ([]*entries.Row, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	columns := enabledColumns(t)
	rows, err := s.pool.Query(ctx, buildSelectQuery(t, columns), offset, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading batch of %s", t.QualifiedName())
	}
	defer rows.Close()

	var res []*entries.Row
	for rows.Next() {
		scanned := make([]*string, len(t.PrimaryKey)+len(columns))
		dest := make([]any, len(scanned))
		for idx := range scanned {
			dest[idx] = &scanned[idx]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, errors.Wrapf(err, "error scanning row of %s", t.QualifiedName())
		}

		row := &entries.Row{
			Keys:   make([]string, len(t.PrimaryKey)),
			Values: make(map[string]*string, len(columns)),
		}
		for idx := range t.PrimaryKey {
			if scanned[idx] == nil {
				return nil, fmt.Errorf("%s: NULL primary key component %s", t.QualifiedName(), t.PrimaryKey[idx])
			}
			row.Keys[idx] = *scanned[idx]
		}
		for idx, c := range columns {
			row.Values[c] = scanned[len(t.PrimaryKey)+idx]
		}
		res = append(res, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "error iterating rows of %s", t.QualifiedName())
	}
	return res, nil
}

// UpdateBatch persists a transformed batch. Expected uniqueness conflicts are
// absorbed into the result as failed rows; any other error is fatal for the
// caller's table.
func (s *Store) UpdateBatch(ctx context.Context, t *domains.TableConfig, batch []*entries.Row) (*entries.UpdateResult, error) {
	colTypes, err := s.columnTypes(ctx, t)
	if err != nil {
		return nil, err
	}

	columns := enabledColumns(t)
	res := &entries.UpdateResult{}

	for start := 0; start < len(batch); start += s.sqlBatchSize {
		end := start + s.sqlBatchSize
		if end > len(batch) {
			end = len(batch)
		}
		sub := batch[start:end]

		err := s.updateStaged(ctx, t, columns, colTypes, sub, res)
		if err == nil {
			continue
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		log.Debug().
			Str("table", t.QualifiedName()).
			Int("rows", len(sub)).
			Msg("set-based update hit a uniqueness conflict, falling back to row-by-row")
		if err := s.updateRowByRow(ctx, t, columns, colTypes, sub, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// updateStaged is the two-phase write: bulk-load the sub-batch into a temp
// staging table, then run one set-based update joined on the primary key. Both
// steps share a transaction that is rolled back on any error.
func (s *Store) updateStaged(
	ctx context.Context, t *domains.TableConfig, columns []string,
	colTypes map[string]string, sub []*entries.Row, res *entries.UpdateResult,
) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot acquire connection")
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot begin transaction")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	stage := fmt.Sprintf("dbmasq_stage_%d", time.Now().UnixNano())
	if _, err := tx.Exec(ctx, buildCreateStageQuery(stage, t, columns)); err != nil {
		return errors.Wrap(err, "cannot create staging table")
	}

	copyColumns := append(append([]string{}, t.PrimaryKey...), columns...)
	copyRows := make([][]any, len(sub))
	for idx, row := range sub {
		values := make([]any, 0, len(copyColumns))
		for _, key := range row.Keys {
			values = append(values, key)
		}
		for _, c := range columns {
			if v := row.Values[c]; v != nil {
				values = append(values, *v)
			} else {
				values = append(values, nil)
			}
		}
		copyRows[idx] = values
	}

	if _, err := tx.CopyFrom(
		ctx, pgx.Identifier{stage}, copyColumns, pgx.CopyFromRows(copyRows),
	); err != nil {
		return errors.Wrap(err, "cannot bulk-load staging table")
	}

	ct, err := tx.Exec(ctx, buildMergeQuery(stage, t, columns, colTypes))
	if err != nil {
		return errors.Wrap(err, "merge from staging table failed")
	}
	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "cannot commit staged update")
	}

	res.Updated += ct.RowsAffected()
	if shortfall := int64(len(sub)) - ct.RowsAffected(); shortfall > 0 {
		// rows deleted between read and write are skipped, not an error
		res.Skipped += shortfall
	}
	return nil
}

// updateRowByRow retries a conflicted sub-batch one row per transaction. Rows
// that still violate a constraint are captured and the loop continues.
func (s *Store) updateRowByRow(
	ctx context.Context, t *domains.TableConfig, columns []string,
	colTypes map[string]string, sub []*entries.Row, res *entries.UpdateResult,
) error {
	query := buildRowUpdateQuery(t, columns, colTypes)

	for _, row := range sub {
		args := make([]any, 0, len(columns)+len(row.Keys))
		for _, c := range columns {
			if v := row.Values[c]; v != nil {
				args = append(args, *v)
			} else {
				args = append(args, nil)
			}
		}
		for _, key := range row.Keys {
			args = append(args, key)
		}

		ct, err := s.execRowUpdate(ctx, query, args)
		if err != nil {
			if !isUniqueViolation(err) {
				return err
			}
			res.Failed = append(res.Failed, &entries.FailedRow{
				Table:     t.QualifiedName(),
				Keys:      row.Keys,
				NewValues: row.Values,
				Reason:    err.Error(),
			})
			continue
		}
		if ct.RowsAffected() == 0 {
			res.Skipped++
			continue
		}
		res.Updated += ct.RowsAffected()
	}
	return nil
}

func (s *Store) execRowUpdate(ctx context.Context, query string, args []any) (pgconn.CommandTag, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return pgconn.CommandTag{}, errors.Wrap(err, "cannot begin row update transaction")
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return pgconn.CommandTag{}, errors.Wrap(err, "cannot commit row update")
	}
	return ct, nil
}

func (s *Store) columnTypes(ctx context.Context, t *domains.TableConfig) (map[string]string, error) {
	s.typesMx.Lock()
	defer s.typesMx.Unlock()
	if res, ok := s.types[t.QualifiedName()]; ok {
		return res, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, columnTypesQuery, t.SchemaName(), t.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "error introspecting column types of %s", t.QualifiedName())
	}
	defer rows.Close()

	res := make(map[string]string)
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			return nil, errors.Wrap(err, "error scanning column type")
		}
		res[name] = typ
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating column types")
	}

	for _, c := range append(append([]string{}, t.PrimaryKey...), enabledColumns(t)...) {
		if _, ok := res[c]; !ok {
			return nil, fmt.Errorf("%s: configured column %s does not exist", t.QualifiedName(), c)
		}
	}
	s.types[t.QualifiedName()] = res
	return res, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolationCode
}
