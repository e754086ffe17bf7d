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

package domains

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/dbmasq/dbmasq/internal/storages/directory"
	"github.com/dbmasq/dbmasq/internal/storages/s3"
)

var (
	Cfg  *Config
	once sync.Once
)

const (
	defaultStoragePath    = "/tmp/dbmasq"
	defaultStorageType    = "directory"
	defaultBatchSize      = 10000
	defaultSQLBatchSize   = 1000
	defaultWorkers        = 4
	defaultBatchWorkers   = 2
	defaultHashEngine     = "sha256"
	defaultCommandTimeout = "30s"
)

const (
	FallbackUseOriginal = "use_original"
	FallbackUseDefault  = "use_default"
	FallbackSkip        = "skip"
)

func NewConfig() *Config {
	once.Do(
		func() {
			Cfg = &Config{
				Storage: StorageConfig{
					Type:      defaultStorageType,
					S3:        s3.NewConfig(),
					Directory: &directory.Config{Path: defaultStoragePath},
				},
				Database: DatabaseConfig{
					Port:           5432,
					SSLMode:        "prefer",
					CommandTimeout: defaultCommandTimeout,
				},
			}
		},
	)
	return Cfg
}

type Config struct {
	Log         LogConfig      `mapstructure:"log" yaml:"log" json:"log"`
	Storage     StorageConfig  `mapstructure:"storage" yaml:"storage" json:"storage"`
	Database    DatabaseConfig `mapstructure:"database" yaml:"database" json:"database"`
	Obfuscation Obfuscation    `mapstructure:"obfuscation" yaml:"obfuscation" json:"obfuscation"`
}

type LogConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format,omitempty"`
	Level  string `mapstructure:"level" yaml:"level" json:"level,omitempty"`
}

type StorageConfig struct {
	Type      string            `mapstructure:"type" yaml:"type" json:"type,omitempty"`
	S3        *s3.Config        `mapstructure:"s3" yaml:"s3" json:"s3,omitempty"`
	Directory *directory.Config `mapstructure:"directory" yaml:"directory" json:"directory,omitempty"`
}

type DatabaseConfig struct {
	Host           string `mapstructure:"host" yaml:"host" json:"host,omitempty"`
	Port           int    `mapstructure:"port" yaml:"port" json:"port,omitempty"`
	User           string `mapstructure:"user" yaml:"user" json:"user,omitempty"`
	Password       string `mapstructure:"password" yaml:"password" json:"password,omitempty"`
	DBName         string `mapstructure:"dbname" yaml:"dbname" json:"dbname,omitempty"`
	SSLMode        string `mapstructure:"sslmode" yaml:"sslmode" json:"sslmode,omitempty"`
	CommandTimeout string `mapstructure:"command_timeout" yaml:"command_timeout" json:"command_timeout,omitempty"`
}

func (d *DatabaseConfig) URI() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

func (d *DatabaseConfig) Timeout() (time.Duration, error) {
	if d.CommandTimeout == "" {
		return str2duration.ParseDuration(defaultCommandTimeout)
	}
	res, err := str2duration.ParseDuration(d.CommandTimeout)
	if err != nil {
		return 0, fmt.Errorf("cannot parse command_timeout: %w", err)
	}
	return res, nil
}

// Obfuscation is the run configuration together with the transformation plan.
// It is immutable for the duration of a run; Hash identifies it for checkpointing.
type Obfuscation struct {
	GlobalSeed      string                 `mapstructure:"global_seed" yaml:"global_seed" json:"global_seed"`
	HashEngine      string                 `mapstructure:"hash_engine" yaml:"hash_engine" json:"hash_engine,omitempty"`
	BatchSize       int                    `mapstructure:"batch_size" yaml:"batch_size" json:"batch_size,omitempty"`
	SQLBatchSize    int                    `mapstructure:"sql_batch_size" yaml:"sql_batch_size" json:"sql_batch_size,omitempty"`
	Workers         int                    `mapstructure:"workers" yaml:"workers" json:"workers,omitempty"`
	BatchWorkers    int                    `mapstructure:"batch_workers" yaml:"batch_workers" json:"batch_workers,omitempty"`
	MaxCacheEntries int                    `mapstructure:"max_cache_entries" yaml:"max_cache_entries" json:"max_cache_entries,omitempty"`
	DryRun          bool                   `mapstructure:"dry_run" yaml:"dry_run" json:"dry_run,omitempty"`
	PersistMappings bool                   `mapstructure:"persist_mappings" yaml:"persist_mappings" json:"persist_mappings,omitempty"`
	CustomTypes     map[string]*CustomType `mapstructure:"custom_types" yaml:"custom_types" json:"custom_types,omitempty"`
	Relationships   []*Relationship        `mapstructure:"relationships" yaml:"relationships" json:"relationships,omitempty"`
	Tables          []*TableConfig         `mapstructure:"tables" yaml:"tables" json:"tables"`
}

// CustomType is a named alias over a built-in type tag. The base type drives
// generation while the custom seed keeps the alias's output space distinct.
type CustomType struct {
	BaseType  string `mapstructure:"base_type" yaml:"base_type" json:"base_type"`
	Seed      string `mapstructure:"seed" yaml:"seed" json:"seed,omitempty"`
	MaxLength int    `mapstructure:"max_length" yaml:"max_length" json:"max_length,omitempty"`
}

type TableColumn struct {
	Table  string `mapstructure:"table" yaml:"table" json:"table"`
	Column string `mapstructure:"column" yaml:"column" json:"column"`
}

func (tc *TableColumn) String() string {
	return tc.Table + "." + tc.Column
}

type Relationship struct {
	Primary TableColumn   `mapstructure:"primary" yaml:"primary" json:"primary"`
	Related []TableColumn `mapstructure:"related" yaml:"related" json:"related"`
}

type TableConfig struct {
	Name       string          `mapstructure:"name" yaml:"name" json:"name"`
	Schema     string          `mapstructure:"schema" yaml:"schema" json:"schema,omitempty"`
	Priority   int             `mapstructure:"priority" yaml:"priority" json:"priority,omitempty"`
	PrimaryKey []string        `mapstructure:"primary_key" yaml:"primary_key" json:"primary_key"`
	Filter     string          `mapstructure:"filter" yaml:"filter" json:"filter,omitempty"`
	BatchSize  int             `mapstructure:"batch_size" yaml:"batch_size" json:"batch_size,omitempty"`
	Columns    []*ColumnConfig `mapstructure:"columns" yaml:"columns" json:"columns"`
}

func (t *TableConfig) SchemaName() string {
	if t.Schema == "" {
		return "public"
	}
	return t.Schema
}

func (t *TableConfig) QualifiedName() string {
	return t.SchemaName() + "." + t.Name
}

type ColumnConfig struct {
	Name           string `mapstructure:"name" yaml:"name" json:"name"`
	Type           string `mapstructure:"type" yaml:"type" json:"type"`
	Enabled        *bool  `mapstructure:"enabled" yaml:"enabled" json:"enabled,omitempty"`
	PreserveLength bool   `mapstructure:"preserve_length" yaml:"preserve_length" json:"preserve_length,omitempty"`
	MaxLength      int    `mapstructure:"max_length" yaml:"max_length" json:"max_length,omitempty"`
	Fallback       string `mapstructure:"fallback" yaml:"fallback" json:"fallback,omitempty"`
	Default        string `mapstructure:"default" yaml:"default" json:"default,omitempty"`
}

// IsEnabled - columns are enabled unless explicitly switched off.
func (c *ColumnConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// SetDefaults fills unset run parameters. Called once before validation.
func (o *Obfuscation) SetDefaults() {
	if o.HashEngine == "" {
		o.HashEngine = defaultHashEngine
	}
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.SQLBatchSize <= 0 {
		o.SQLBatchSize = defaultSQLBatchSize
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.BatchWorkers <= 0 {
		o.BatchWorkers = defaultBatchWorkers
	}
}

// Validate fails fast on structural configuration errors so that no row is
// touched by a run with a broken plan. Type-tag resolution is validated by
// the generator registry separately.
func (o *Obfuscation) Validate() error {
	if o.GlobalSeed == "" {
		return fmt.Errorf("obfuscation.global_seed cannot be empty")
	}
	if len(o.Tables) == 0 {
		return fmt.Errorf("obfuscation.tables cannot be empty")
	}

	configured := make(map[string]bool)
	for _, t := range o.Tables {
		if t.Name == "" {
			return fmt.Errorf("table name cannot be empty")
		}
		if len(t.PrimaryKey) == 0 {
			return fmt.Errorf("table %s: primary_key cannot be empty", t.QualifiedName())
		}
		if len(t.Columns) == 0 {
			return fmt.Errorf("table %s: columns cannot be empty", t.QualifiedName())
		}
		for _, c := range t.Columns {
			if c.Name == "" {
				return fmt.Errorf("table %s: column name cannot be empty", t.QualifiedName())
			}
			if c.Type == "" {
				return fmt.Errorf("column %s.%s: type cannot be empty", t.QualifiedName(), c.Name)
			}
			switch c.Fallback {
			case "", FallbackUseOriginal, FallbackUseDefault, FallbackSkip:
			default:
				return fmt.Errorf(
					"column %s.%s: unknown fallback %q", t.QualifiedName(), c.Name, c.Fallback,
				)
			}
			configured[t.Name+"."+c.Name] = true
			configured[t.QualifiedName()+"."+c.Name] = true
		}
	}

	for name, ct := range o.CustomTypes {
		if ct.BaseType == "" {
			return fmt.Errorf("custom type %s: base_type cannot be empty", name)
		}
	}

	for _, rel := range o.Relationships {
		if !configured[rel.Primary.String()] {
			return fmt.Errorf("relationship primary %s references an unconfigured column", rel.Primary.String())
		}
		for _, rc := range rel.Related {
			if !configured[rc.String()] {
				return fmt.Errorf("relationship related %s references an unconfigured column", rc.String())
			}
		}
	}
	return nil
}

// Hash identifies the effective obfuscation plan. A checkpoint written under a
// different plan must not be resumed from.
func (o *Obfuscation) Hash() (string, error) {
	data, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("cannot marshal obfuscation config: %w", err)
	}
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:]), nil
}
