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
	"sync"
	"time"

	"github.com/dbmasq/dbmasq/internal/db/entries"
)

type TableStatus string

const (
	TableStatusPending    TableStatus = "pending"
	TableStatusInProgress TableStatus = "in_progress"
	TableStatusCompleted  TableStatus = "completed"
	TableStatusFailed     TableStatus = "failed"
)

// TableResult is the per-table outcome of a run. Batch workers mutate it
// concurrently through the add* helpers.
type TableResult struct {
	Table     string               `json:"table" yaml:"table"`
	Status    TableStatus          `json:"status" yaml:"status"`
	TotalRows int64                `json:"total_rows" yaml:"total_rows"`
	Rows      int64                `json:"rows" yaml:"rows"`
	Updated   int64                `json:"updated" yaml:"updated"`
	Skipped   int64                `json:"skipped" yaml:"skipped"`
	Failed    []*entries.FailedRow `json:"failed,omitempty" yaml:"failed,omitempty"`
	Error     string               `json:"error,omitempty" yaml:"error,omitempty"`
	Duration  time.Duration        `json:"duration" yaml:"duration"`

	mx sync.Mutex
}

func (r *TableResult) addBatch(rows int64, res *entries.UpdateResult) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.Rows += rows
	if res != nil {
		r.Updated += res.Updated
		r.Skipped += res.Skipped
		r.Failed = append(r.Failed, res.Failed...)
	}
}

func (r *TableResult) addSkipped(rows int64) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.Skipped += rows
}

// RunResult is the aggregate outcome of an obfuscation run.
type RunResult struct {
	RunID       string         `json:"run_id" yaml:"run_id"`
	DryRun      bool           `json:"dry_run" yaml:"dry_run"`
	StartedAt   time.Time      `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time      `json:"completed_at" yaml:"completed_at"`
	Duration    time.Duration  `json:"duration" yaml:"duration"`
	Tables      []*TableResult `json:"tables" yaml:"tables"`
	RowsRead    int64          `json:"rows_read" yaml:"rows_read"`
	RowsUpdated int64          `json:"rows_updated" yaml:"rows_updated"`
	RowsSkipped int64          `json:"rows_skipped" yaml:"rows_skipped"`
	RowsFailed  int64          `json:"rows_failed" yaml:"rows_failed"`
	Success     bool           `json:"success" yaml:"success"`
	Errors      []string       `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// FailedRows collects the failed-row records of every table for reporting.
func (r *RunResult) FailedRows() []*entries.FailedRow {
	var failed []*entries.FailedRow
	for _, t := range r.Tables {
		failed = append(failed, t.Failed...)
	}
	return failed
}

func (r *RunResult) aggregate() {
	r.Success = true
	for _, t := range r.Tables {
		r.RowsRead += t.Rows
		r.RowsUpdated += t.Updated
		r.RowsSkipped += t.Skipped
		r.RowsFailed += int64(len(t.Failed))
		if t.Status == TableStatusFailed {
			r.Success = false
			if t.Error != "" {
				r.Errors = append(r.Errors, t.Table+": "+t.Error)
			}
		}
	}
}
