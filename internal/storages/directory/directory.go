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

package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sync"

	"github.com/dbmasq/dbmasq/internal/storages"
)

const (
	dirMode  os.FileMode = 0750
	fileMode os.FileMode = 0650
)

type Config struct {
	Path string `mapstructure:"path" yaml:"path" json:"path"`
}

type Storage struct {
	dirMode  os.FileMode
	fileMode os.FileMode
	cwd      string
	mx       sync.Mutex
}

func NewStorage(cfg *Config) (*Storage, error) {
	if cfg == nil || cfg.Path == "" {
		return nil, errors.New("directory storage path cannot be empty")
	}
	if err := os.MkdirAll(cfg.Path, dirMode); err != nil {
		return nil, fmt.Errorf("cannot create storage directory: %w", err)
	}
	fileInfo, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, err
	}
	if !fileInfo.IsDir() {
		return nil, errors.New("received directory path is file")
	}
	return &Storage{
		dirMode:  dirMode,
		fileMode: fileMode,
		cwd:      cfg.Path,
	}, nil
}

func (s *Storage) GetObject(ctx context.Context, filePath string) (reader io.ReadCloser, err error) {
	reader, err = os.Open(path.Join(s.cwd, filePath))
	return
}

// PutObject writes the body into a temp file next to the target and renames it
// over the target, so a crash mid-write never leaves a truncated object behind.
func (s *Storage) PutObject(ctx context.Context, filePath string, body io.Reader) error {
	target := path.Join(s.cwd, filePath)

	s.mx.Lock()
	if err := os.MkdirAll(path.Dir(target), s.dirMode); err != nil {
		s.mx.Unlock()
		return fmt.Errorf("cannot create directory for object: %w", err)
	}
	s.mx.Unlock()

	tmp, err := os.CreateTemp(path.Dir(target), path.Base(target)+".tmp.*")
	if err != nil {
		return fmt.Errorf("cannot create temp object: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err = io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("error writing object body: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("error syncing object body: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("error closing temp object: %w", err)
	}
	if err = os.Chmod(tmp.Name(), s.fileMode); err != nil {
		return fmt.Errorf("error changing temp object mode: %w", err)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("error renaming temp object over target: %w", err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, filePaths ...string) error {
	var lastErr error
	for _, fp := range filePaths {
		if err := os.Remove(path.Join(s.cwd, fp)); err != nil && !errors.Is(err, os.ErrNotExist) {
			lastErr = fmt.Errorf("error deleting object %s: %w", fp, err)
		}
	}
	return lastErr
}

func (s *Storage) Exists(ctx context.Context, fileName string) (bool, error) {
	_, err := os.Stat(path.Join(s.cwd, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Storage) SubStorage(subPath string, relative bool) storages.Storager {
	cwd := subPath
	if relative {
		cwd = path.Join(s.cwd, subPath)
	}
	return &Storage{
		cwd:      cwd,
		dirMode:  s.dirMode,
		fileMode: s.fileMode,
	}
}
