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

package obfuscate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dbmasq/dbmasq/internal/db/entries"
	"github.com/dbmasq/dbmasq/internal/domains"
	"github.com/dbmasq/dbmasq/internal/generators/transformers"
	"github.com/dbmasq/dbmasq/internal/obfuscate/checkpoint"
	"github.com/dbmasq/dbmasq/internal/obfuscate/refmap"
	"github.com/dbmasq/dbmasq/internal/obfuscate/valuecache"
)

const lengthFiller = '*'

// DataStore is the bulk row access contract the runner drives. The postgres
// package provides the production implementation.
type DataStore interface {
	CountRows(ctx context.Context, t *domains.TableConfig) (int64, error)
	ReadBatch(ctx context.Context, t *domains.TableConfig, offset, limit int64) ([]*entries.Row, error)
	UpdateBatch(ctx context.Context, t *domains.TableConfig, batch []*entries.Row) (*entries.UpdateResult, error)
}

// Runner executes the obfuscation pipeline: tables are dispatched to a worker
// pool in priority order, and each table fans its batches out to a nested pool.
type Runner struct {
	cfg         *domains.Config
	store       DataStore
	generator   *transformers.ValueGenerator
	cache       *valuecache.Cache
	refmap      *refmap.Mapper
	checkpoints *checkpoint.Store
}

func NewRunner(
	cfg *domains.Config, store DataStore, generator *transformers.ValueGenerator,
	cache *valuecache.Cache, rm *refmap.Mapper, checkpoints *checkpoint.Store,
) *Runner {
	return &Runner{
		cfg:         cfg,
		store:       store,
		generator:   generator,
		cache:       cache,
		refmap:      rm,
		checkpoints: checkpoints,
	}
}

type tableTask struct {
	table  *domains.TableConfig
	result *TableResult
}

// Run processes every configured table and returns the aggregate result. A
// non-nil error means the run itself was interrupted (context cancellation or
// checkpoint storage failure); table-level failures are reported through the
// result instead.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	res := &RunResult{
		RunID:     uuid.NewString(),
		DryRun:    r.cfg.Obfuscation.DryRun,
		StartedAt: time.Now(),
	}

	if r.useCheckpoints() {
		hash, err := r.cfg.Obfuscation.Hash()
		if err != nil {
			return nil, err
		}
		state, err := r.checkpoints.Load(ctx, hash)
		if err != nil {
			return nil, err
		}
		if state != nil {
			res.RunID = state.RunID
			log.Info().Str("run_id", res.RunID).Msg("resuming from checkpoint")
		} else {
			state = &checkpoint.State{ConfigHash: hash, RunID: res.RunID}
		}
		if err := r.checkpoints.Begin(ctx, state); err != nil {
			return nil, err
		}
	}

	tables := sortTables(r.cfg.Obfuscation.Tables)
	res.Tables = make([]*TableResult, len(tables))
	for i, t := range tables {
		res.Tables[i] = &TableResult{Table: t.QualifiedName(), Status: TableStatusPending}
	}

	tasks := make(chan *tableTask, r.cfg.Obfuscation.Workers)
	eg, gtx := errgroup.WithContext(ctx)
	eg.Go(r.taskProducer(gtx, tables, res.Tables, tasks))
	eg.Go(r.tableWorkerPlanner(gtx, tasks))
	runErr := eg.Wait()

	res.CompletedAt = time.Now()
	res.Duration = res.CompletedAt.Sub(res.StartedAt)
	res.aggregate()
	if runErr != nil {
		res.Success = false
		res.Errors = append(res.Errors, runErr.Error())
	}

	if r.useCheckpoints() {
		cpCtx := context.WithoutCancel(ctx)
		if res.Success {
			if err := r.checkpoints.Complete(cpCtx); err != nil {
				return res, err
			}
		} else if err := r.checkpoints.Fail(cpCtx); err != nil {
			return res, err
		}
	}
	return res, runErr
}

func (r *Runner) useCheckpoints() bool {
	return r.checkpoints != nil && !r.cfg.Obfuscation.DryRun
}

// sortTables orders tables by priority then name so runs are reproducible.
func sortTables(tables []*domains.TableConfig) []*domains.TableConfig {
	sorted := make([]*domains.TableConfig, len(tables))
	copy(sorted, tables)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		return sorted[i].QualifiedName() < sorted[j].QualifiedName()
	})
	return sorted
}

func (r *Runner) taskProducer(
	ctx context.Context, tables []*domains.TableConfig, results []*TableResult, tasks chan<- *tableTask,
) func() error {
	return func() error {
		defer close(tasks)
		for i, t := range tables {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case tasks <- &tableTask{table: t, result: results[i]}:
			}
		}
		return nil
	}
}

func (r *Runner) tableWorkerPlanner(ctx context.Context, tasks <-chan *tableTask) func() error {
	return func() error {
		workerEg, gtx := errgroup.WithContext(ctx)
		for j := 0; j < r.cfg.Obfuscation.Workers; j++ {
			workerEg.Go(r.tableWorker(gtx, tasks, j))
		}
		return workerEg.Wait()
	}
}

func (r *Runner) tableWorker(ctx context.Context, tasks <-chan *tableTask, workerID int) func() error {
	return func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case task, ok := <-tasks:
				if !ok {
					return nil
				}
				log.Debug().
					Int("worker_id", workerID).
					Str("table", task.table.QualifiedName()).
					Msg("table received by worker")
				r.processTable(ctx, task.table, task.result)
			}
		}
	}
}

// processTable runs one table to completion. Read and write failures mark the
// table failed and are absorbed here so the remaining tables keep going.
func (r *Runner) processTable(ctx context.Context, t *domains.TableConfig, res *TableResult) {
	started := time.Now()
	res.Status = TableStatusInProgress
	defer func() {
		res.Duration = time.Since(started)
	}()

	total, err := r.store.CountRows(ctx, t)
	if err != nil {
		r.failTable(t, res, err)
		return
	}
	res.TotalRows = total

	start := int64(0)
	if r.useCheckpoints() {
		start = r.checkpoints.TableOffset(t.QualifiedName())
		if start > 0 {
			log.Info().
				Str("table", t.QualifiedName()).
				Int64("offset", start).
				Msg("skipping rows completed by a previous run")
		}
	}

	batchSize := int64(t.BatchSize)
	if batchSize <= 0 {
		batchSize = int64(r.cfg.Obfuscation.BatchSize)
	}
	bindings := r.bindColumns(t)
	front := newFrontier(start)

	eg, gtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.cfg.Obfuscation.BatchWorkers)
	for offset := start; offset < total; offset += batchSize {
		offset := offset
		end := offset + batchSize
		if end > total {
			end = total
		}
		eg.Go(func() error {
			return r.processBatch(gtx, t, res, bindings, front, offset, end)
		})
	}
	if err := eg.Wait(); err != nil {
		r.failTable(t, res, err)
		return
	}

	res.Status = TableStatusCompleted
	log.Info().
		Str("table", t.QualifiedName()).
		Int64("rows", res.Rows).
		Int64("updated", res.Updated).
		Msg("table completed")
}

func (r *Runner) failTable(t *domains.TableConfig, res *TableResult, err error) {
	res.Status = TableStatusFailed
	res.Error = err.Error()
	log.Error().Err(err).Str("table", t.QualifiedName()).Msg("table processing aborted")
}

func (r *Runner) processBatch(
	ctx context.Context, t *domains.TableConfig, res *TableResult,
	bindings map[string]*refmap.Binding, front *frontier, offset, end int64,
) error {
	rows, err := r.store.ReadBatch(ctx, t, offset, end-offset)
	if err != nil {
		return err
	}

	batch := rows[:0]
	var skipped int64
	for _, row := range rows {
		keep, err := r.transformRow(t, bindings, row)
		if err != nil {
			return err
		}
		if keep {
			batch = append(batch, row)
		} else {
			skipped++
		}
	}
	if skipped > 0 {
		res.addSkipped(skipped)
	}

	var updateRes *entries.UpdateResult
	if !r.cfg.Obfuscation.DryRun && len(batch) > 0 {
		updateRes, err = r.store.UpdateBatch(ctx, t, batch)
		if err != nil {
			return err
		}
	}
	res.addBatch(int64(len(rows)), updateRes)

	if frontierEnd, doneRows, advanced := front.complete(offset, end, int64(len(rows))); advanced && r.useCheckpoints() {
		return r.checkpoints.Advance(ctx, t.QualifiedName(), frontierEnd, doneRows)
	}
	return nil
}

// bindColumns resolves each enabled column against the relationship map once
// per table instead of per row.
func (r *Runner) bindColumns(t *domains.TableConfig) map[string]*refmap.Binding {
	bindings := make(map[string]*refmap.Binding)
	if r.refmap == nil {
		return bindings
	}
	for _, c := range t.Columns {
		if !c.IsEnabled() {
			continue
		}
		if b := r.refmap.Bind(c.Name, t.Name, t.QualifiedName()); b != nil {
			bindings[c.Name] = b
		}
	}
	return bindings
}

// transformRow rewrites the enabled column values of a row in place. NULLs
// pass through untouched. A generation failure applies the column's fallback;
// the skip fallback drops the row from the write batch (keep=false).
func (r *Runner) transformRow(
	t *domains.TableConfig, bindings map[string]*refmap.Binding, row *entries.Row,
) (keep bool, err error) {
	for _, c := range t.Columns {
		if !c.IsEnabled() {
			continue
		}
		v, ok := row.Values[c.Name]
		if !ok {
			return false, fmt.Errorf("column %q missing from row of table %s", c.Name, t.QualifiedName())
		}
		if v == nil {
			continue
		}
		original := *v

		generated, genErr := r.generateValue(c, bindings[c.Name], original)
		if genErr != nil {
			log.Warn().
				Err(genErr).
				Str("table", t.QualifiedName()).
				Str("column", c.Name).
				Str("fallback", c.Fallback).
				Msg("value generation failed, applying fallback")
			switch c.Fallback {
			case domains.FallbackUseDefault:
				generated = c.Default
			case domains.FallbackSkip:
				return false, nil
			default:
				generated = original
			}
		}
		if c.PreserveLength {
			generated = fitToLength(generated, original)
		}
		value := generated
		row.Values[c.Name] = &value
	}
	return true, nil
}

func (r *Runner) generateValue(c *domains.ColumnConfig, b *refmap.Binding, original string) (string, error) {
	if b != nil {
		if v, ok := b.Resolve(original); ok {
			return v, nil
		}
	}
	key := r.generator.CacheKey(c.Type, original)
	v, err := r.cache.GetOrCreate(c.Type, key, func() (string, error) {
		return r.generator.Generate(c.Type, original, c.MaxLength)
	})
	if err != nil {
		return "", err
	}
	if b != nil {
		v = b.Register(original, v)
	}
	return v, nil
}

// fitToLength pads or truncates generated so its rune length matches the
// original. Fixed-width downstream consumers rely on the exact length.
func fitToLength(generated, original string) string {
	want := len([]rune(original))
	runes := []rune(generated)
	if len(runes) == want {
		return generated
	}
	if len(runes) > want {
		return string(runes[:want])
	}
	return generated + strings.Repeat(string(lengthFiller), want-len(runes))
}

type frontierSpan struct {
	end  int64
	rows int64
}

// frontier tracks the contiguous prefix of completed batch ranges so the
// checkpoint never records an offset past an unfinished earlier batch.
type frontier struct {
	mx   sync.Mutex
	next int64
	done map[int64]frontierSpan
}

func newFrontier(start int64) *frontier {
	return &frontier{next: start, done: make(map[int64]frontierSpan)}
}

// complete marks [start, end) as persisted and returns the new contiguous
// frontier together with the row count it newly covers. advanced is false
// while an earlier batch is still in flight.
func (f *frontier) complete(start, end, rows int64) (frontierEnd, doneRows int64, advanced bool) {
	f.mx.Lock()
	defer f.mx.Unlock()
	f.done[start] = frontierSpan{end: end, rows: rows}
	for {
		span, ok := f.done[f.next]
		if !ok {
			break
		}
		delete(f.done, f.next)
		f.next = span.end
		doneRows += span.rows
		advanced = true
	}
	return f.next, doneRows, advanced
}
