// Package cache stores a merged Documentation between runs so unchanged
// inputs are not parsed again.
//
// A cache file is fresh when every input is strictly older than it and it
// was written for exactly the same ordered list of inputs. Diagnostics are
// not cached, so a cache hit reports nothing.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/phobologic/luadoc/internal/model"
)

// Current schema version; increment when payload or model layout changes.
const schemaVersion uint16 = 1

type payload struct {
	Schema uint16
	Inputs []string
	Doc    *model.Documentation
}

// Fresh reports whether the file at path is newer than every input.
func Fresh(path string, inputs []string) bool {
	cacheInfo, err := os.Stat(path)
	if err != nil {
		return false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, in := range inputs {
		fi, err := os.Stat(in)
		if err != nil {
			return false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return false
		}
	}
	return true
}

// Load returns the cached Documentation for inputs. ok is false when there
// is no usable cache: missing, stale, written by another schema version
// or for different inputs. A corrupt file is an error.
func Load(path string, inputs []string) (doc *model.Documentation, ok bool, err error) {
	if !Fresh(path, inputs) {
		return nil, false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var p payload
	if err := msgpack.NewDecoder(f).Decode(&p); err != nil {
		return nil, false, fmt.Errorf("decoding cache %s: %w", path, err)
	}
	if p.Schema != schemaVersion || !slices.Equal(p.Inputs, inputs) || p.Doc == nil {
		return nil, false, nil
	}
	return p.Doc, true, nil
}

// Store writes doc for inputs to path, replacing it atomically.
func Store(path string, inputs []string, doc *model.Documentation) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".luadoc-cache-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	err = msgpack.NewEncoder(f).Encode(&payload{Schema: schemaVersion, Inputs: inputs, Doc: doc})
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("encoding cache %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}
