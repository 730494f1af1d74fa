// Package engine defines the interface both storage backends satisfy
// (the log-structured kvstore.Store and the embedded sledengine.Store)
// and the on-disk marker that pins a data directory to one backend.
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Engine is the contract every backend implements: set, get, and
// remove over UTF-8 string keys and values, and a close that releases
// whatever resources the backend holds.
type Engine interface {
	Set(key, value string) error
	Get(key string) (string, bool, error)
	Remove(key string) error
	Close() error
}

// Name identifies which Engine implementation owns a data directory.
type Name string

const (
	NameKVS  Name = "kvs"
	NameSled Name = "sled"
)

// ErrEngineMismatch is returned when a directory's recorded engine
// marker disagrees with the engine the caller asked to start.
var ErrEngineMismatch = fmt.Errorf("requested engine does not match the engine recorded for this directory")

// ReadMarker reads the engine marker file in dir, if any. It returns
// ("", false, nil) when no marker file exists yet (a fresh directory).
func ReadMarker(dir, markerFile string) (Name, bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, markerFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return Name(strings.TrimSpace(string(data))), true, nil
}

// WriteMarker pins dir to the given engine, writing the marker file if
// it does not already exist. If a marker already exists it must match
// name, or ErrEngineMismatch is returned (§3: "pin the engine choice
// for this directory").
func WriteMarker(dir, markerFile string, name Name) error {
	existing, ok, err := ReadMarker(dir, markerFile)
	if err != nil {
		return err
	}
	if ok {
		if existing != name {
			return ErrEngineMismatch
		}
		return nil
	}
	return os.WriteFile(filepath.Join(dir, markerFile), []byte(name), 0644)
}
