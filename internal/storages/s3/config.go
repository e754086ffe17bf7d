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

package s3

import "errors"

const (
	defaultMaxRetries  = 3
	defaultMaxPartSize = 50 * 1024 * 1024
)

type Config struct {
	Endpoint        string `mapstructure:"endpoint,omitempty" yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Bucket          string `mapstructure:"bucket,omitempty" yaml:"bucket,omitempty" json:"bucket,omitempty"`
	Prefix          string `mapstructure:"prefix,omitempty" yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Region          string `mapstructure:"region,omitempty" yaml:"region,omitempty" json:"region,omitempty"`
	StorageClass    string `mapstructure:"storage_class,omitempty" yaml:"storage_class,omitempty" json:"storage_class,omitempty"`
	AccessKeyId     string `mapstructure:"access_key_id,omitempty" yaml:"access_key_id,omitempty" json:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key,omitempty" yaml:"secret_access_key,omitempty" json:"secret_access_key,omitempty"`
	SessionToken    string `mapstructure:"session_token,omitempty" yaml:"session_token,omitempty" json:"session_token,omitempty"`
	MaxRetries      int    `mapstructure:"max_retries,omitempty" yaml:"max_retries,omitempty" json:"max_retries,omitempty"`
	MaxPartSize     int64  `mapstructure:"max_part_size,omitempty" yaml:"max_part_size,omitempty" json:"max_part_size,omitempty"`
	Concurrency     int    `mapstructure:"concurrency,omitempty" yaml:"concurrency,omitempty" json:"concurrency,omitempty"`
	ForcePathStyle  bool   `mapstructure:"force_path_style,omitempty" yaml:"force_path_style,omitempty" json:"force_path_style,omitempty"`
}

func NewConfig() *Config {
	return &Config{
		StorageClass:   "STANDARD",
		ForcePathStyle: true,
		MaxRetries:     defaultMaxRetries,
		MaxPartSize:    defaultMaxPartSize,
	}
}

func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("bucket cannot be empty")
	}
	return nil
}
