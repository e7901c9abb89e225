// Copyright 2018 The CUE Authors
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

package loader

import (
	"os"
	"path/filepath"

	digest "github.com/opencontainers/go-digest"
)

// FileReader abstracts the file system the Loader reads from, so tests can
// substitute an in-memory archive (see loader_test.go) without touching
// disk, the same seam cue/load's overlay mechanism provides for CUE.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
	Dir(path string) string
	Join(dir, name string) string
	Abs(path string) (string, error)
}

// osFiles is the default FileReader, backed by the real file system.
type osFiles struct{}

func (osFiles) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (osFiles) Dir(path string) string               { return filepath.Dir(path) }
func (osFiles) Join(dir, name string) string         { return filepath.Join(dir, name) }
func (osFiles) Abs(path string) (string, error)      { return filepath.Abs(path) }

// fileKey canonicalizes path to an absolute form and digests it with
// github.com/opencontainers/go-digest, giving every file reachable from a
// load a single stable cache key regardless of how many import edges
// reference it, so a diamond import graph is read and resolved exactly
// once per Load call.
func fileKey(fs FileReader, path string) (digest.Digest, string, error) {
	abs, err := fs.Abs(path)
	if err != nil {
		return "", "", err
	}
	return digest.FromString(abs), abs, nil
}
