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

package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dbmasq/dbmasq/internal/storages"
)

const DefaultFileName = "checkpoint.json"

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

type TableProgress struct {
	Offset int64 `json:"offset"`
	Rows   int64 `json:"rows"`
}

// State is the durable progress record of a run, keyed by the hash of the
// effective configuration so a changed plan never resumes a stale checkpoint.
type State struct {
	ConfigHash string                    `json:"config_hash"`
	RunID      string                    `json:"run_id"`
	Status     Status                    `json:"status"`
	Tables     map[string]*TableProgress `json:"tables"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// Store persists run progress through a Storager. All writes go through a
// single writer lock and the storage backend guarantees atomic object
// replacement, so a half-written checkpoint is never observable.
type Store struct {
	mx       sync.Mutex
	st       storages.Storager
	fileName string
	state    *State
}

func NewStore(st storages.Storager, fileName string) *Store {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &Store{st: st, fileName: fileName}
}

// Load reads a previous state for configHash and installs it as the active
// state, so per-table offsets are queryable right away. A missing file or a
// hash mismatch yields no state: the run starts clean.
func (s *Store) Load(ctx context.Context, configHash string) (*State, error) {
	exists, err := s.st.Exists(ctx, s.fileName)
	if err != nil {
		return nil, fmt.Errorf("cannot check checkpoint existence: %w", err)
	}
	if !exists {
		return nil, nil
	}

	reader, err := s.st.GetObject(ctx, s.fileName)
	if err != nil {
		return nil, fmt.Errorf("cannot open checkpoint: %w", err)
	}
	defer reader.Close()

	state := &State{}
	if err := json.NewDecoder(reader).Decode(state); err != nil {
		return nil, fmt.Errorf("cannot decode checkpoint: %w", err)
	}
	if state.ConfigHash != configHash {
		log.Warn().
			Str("found", state.ConfigHash).
			Str("expected", configHash).
			Msg("checkpoint belongs to a different configuration, starting clean")
		return nil, nil
	}

	s.mx.Lock()
	s.state = state
	s.mx.Unlock()
	return state, nil
}

// Begin installs the active state for this run, either a resumed one or a
// fresh record, and persists it before any row is touched.
func (s *Store) Begin(ctx context.Context, state *State) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if state.Tables == nil {
		state.Tables = make(map[string]*TableProgress)
	}
	state.Status = StatusInProgress
	s.state = state
	return s.save(ctx)
}

// TableOffset returns the last completed offset for a table, 0 when unknown.
func (s *Store) TableOffset(table string) int64 {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.state == nil {
		return 0
	}
	if tp, ok := s.state.Tables[table]; ok {
		return tp.Offset
	}
	return 0
}

// Advance records that every batch up to endOffset has been persisted for the
// table. Progress only moves forward: batches completing out of order never
// regress the recorded offset.
func (s *Store) Advance(ctx context.Context, table string, endOffset, rows int64) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.state == nil {
		return fmt.Errorf("checkpoint store has no active state")
	}
	tp, ok := s.state.Tables[table]
	if !ok {
		tp = &TableProgress{}
		s.state.Tables[table] = tp
	}
	if endOffset <= tp.Offset {
		return nil
	}
	tp.Offset = endOffset
	tp.Rows += rows
	return s.save(ctx)
}

// Complete clears the checkpoint so the next run starts clean.
func (s *Store) Complete(ctx context.Context) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	s.state = nil
	return s.st.Delete(ctx, s.fileName)
}

// Fail retains the checkpoint with a failed status so a future run can resume
// from the last completed batch per table.
func (s *Store) Fail(ctx context.Context) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	if s.state == nil {
		return nil
	}
	s.state.Status = StatusFailed
	return s.save(ctx)
}

func (s *Store) save(ctx context.Context) error {
	s.state.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal checkpoint: %w", err)
	}
	if err := s.st.PutObject(ctx, s.fileName, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("cannot store checkpoint: %w", err)
	}
	return nil
}
