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

package valuecache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/pgzip"

	"github.com/dbmasq/dbmasq/internal/generators/transformers"
	"github.com/dbmasq/dbmasq/internal/storages"
)

const DefaultFileName = "mappings.json.gz"

// Cache is the selective value-mapping cache. Only type tags classified
// always-cache are stored: recomputing a deterministic high-cardinality value
// is cheaper than holding millions of entries. Safe for concurrent use;
// last-writer-wins is fine because any writer stores the same value for the
// same key.
type Cache struct {
	mx         sync.RWMutex
	entries    map[string]string
	maxEntries int
	policy     func(tag string) transformers.CachePolicy
}

func New(maxEntries int, policy func(tag string) transformers.CachePolicy) *Cache {
	return &Cache{
		entries:    make(map[string]string),
		maxEntries: maxEntries,
		policy:     policy,
	}
}

// GetOrCreate returns the cached value for key or invokes the factory. Tags
// not classified always-cache call the factory on every request. When the
// entry bound is reached new keys bypass the cache instead of evicting.
func (c *Cache) GetOrCreate(tag, key string, factory func() (string, error)) (string, error) {
	if c.policy(tag) != transformers.CacheAlways {
		return factory()
	}

	c.mx.RLock()
	value, ok := c.entries[key]
	c.mx.RUnlock()
	if ok {
		return value, nil
	}

	value, err := factory()
	if err != nil {
		return "", err
	}

	c.mx.Lock()
	if c.maxEntries <= 0 || len(c.entries) < c.maxEntries {
		c.entries[key] = value
	}
	c.mx.Unlock()
	return value, nil
}

func (c *Cache) Len() int {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return len(c.entries)
}

// Save serializes the full cache as a gzip compressed JSON object.
func (c *Cache) Save(ctx context.Context, st storages.Storager, fileName string) error {
	c.mx.RLock()
	data, err := json.Marshal(c.entries)
	c.mx.RUnlock()
	if err != nil {
		return fmt.Errorf("cannot marshal value mappings: %w", err)
	}

	var buf bytes.Buffer
	gz := pgzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return fmt.Errorf("cannot compress value mappings: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("cannot finish gzip stream: %w", err)
	}

	if err := st.PutObject(ctx, fileName, &buf); err != nil {
		return fmt.Errorf("cannot store value mappings: %w", err)
	}
	return nil
}

// Load restores entries from a previous run. Entries are re-filtered by the
// current cache policy, so a file produced under an older classification does
// not reintroduce high-cardinality bloat. Missing files are not an error.
func (c *Cache) Load(ctx context.Context, st storages.Storager, fileName string) error {
	exists, err := st.Exists(ctx, fileName)
	if err != nil {
		return fmt.Errorf("cannot check value mappings existence: %w", err)
	}
	if !exists {
		return nil
	}

	reader, err := st.GetObject(ctx, fileName)
	if err != nil {
		return fmt.Errorf("cannot open value mappings: %w", err)
	}
	defer reader.Close()

	gz, err := pgzip.NewReader(reader)
	if err != nil {
		return fmt.Errorf("cannot open gzip stream: %w", err)
	}
	defer gz.Close()

	loaded := make(map[string]string)
	if err := json.NewDecoder(gz).Decode(&loaded); err != nil {
		return fmt.Errorf("cannot decode value mappings: %w", err)
	}

	c.mx.Lock()
	defer c.mx.Unlock()
	for key, value := range loaded {
		tag, _, found := strings.Cut(key, transformers.KeySeparator)
		if !found || c.policy(tag) != transformers.CacheAlways {
			continue
		}
		if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
			break
		}
		c.entries[key] = value
	}
	return nil
}
