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

package entries

// Row is one table row in transit through the pipeline. Keys hold the primary
// key values in the configured key order; Values maps enabled column names to
// their textual value, nil meaning SQL NULL.
type Row struct {
	Keys   []string
	Values map[string]*string
}

// FailedRow records a single row that could not be persisted. The run
// continues; the record is surfaced in the run result for diagnostics.
type FailedRow struct {
	Table     string
	Keys      []string
	NewValues map[string]*string
	Originals map[string]*string
	Reason    string
}

// UpdateResult is the outcome of a batch write. Skipped counts rows that
// disappeared between read and write (e.g. concurrent deletes); Failed holds
// rows rejected by constraints after the row-by-row fallback.
type UpdateResult struct {
	Updated int64
	Skipped int64
	Failed  []*FailedRow
}
