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

package refmap

import (
	"sync"

	"github.com/dbmasq/dbmasq/internal/domains"
)

// Mapper tracks original-to-generated mappings per declared relationship.
// Every related table/column is redirected to the relationship's primary
// table/column, so one original value resolves to exactly one generated value
// everywhere the relationship reaches, within and across tables.
type Mapper struct {
	mx sync.RWMutex
	// redirect maps "table.column" (primary and related alike) to the
	// primary's key, which owns the value map.
	redirect map[string]string
	values   map[string]map[string]string
}

func NewMapper(relationships []*domains.Relationship) *Mapper {
	m := &Mapper{
		redirect: make(map[string]string),
		values:   make(map[string]map[string]string),
	}
	for _, rel := range relationships {
		primary := rel.Primary.String()
		m.redirect[primary] = primary
		m.values[primary] = make(map[string]string)
		for _, rc := range rel.Related {
			m.redirect[rc.String()] = primary
		}
	}
	return m
}

// Binding is a column's precomputed handle into its relationship map; nil
// when the column participates in no relationship.
type Binding struct {
	m       *Mapper
	primary string
}

// Bind resolves the relationship handle for a column. tableNames lists the
// aliases a table may be referenced by (bare and schema-qualified).
func (m *Mapper) Bind(column string, tableNames ...string) *Binding {
	for _, tn := range tableNames {
		if primary, ok := m.redirect[tn+"."+column]; ok {
			return &Binding{m: m, primary: primary}
		}
	}
	return nil
}

func (b *Binding) Resolve(original string) (string, bool) {
	b.m.mx.RLock()
	defer b.m.mx.RUnlock()
	generated, ok := b.m.values[b.primary][original]
	return generated, ok
}

// Register stores original→generated unless another writer got there first;
// the canonical value is returned either way, so racing batches converge on a
// single generated value per original.
func (b *Binding) Register(original, generated string) string {
	b.m.mx.Lock()
	defer b.m.mx.Unlock()
	if existing, ok := b.m.values[b.primary][original]; ok {
		return existing
	}
	b.m.values[b.primary][original] = generated
	return generated
}
