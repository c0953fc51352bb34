// Package specfile loads precomputed column profiles.
//
// A specification is a JSON array (or YAML list) of profile objects using
// the profiler's field names. Unknown fields are ignored.
package specfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/leapdq/pkg/core"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when the specification file does not exist.
var ErrNotFound = errors.New("not found")

// Error reports a specification that could not be decoded.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("malformed specification '%s': %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Load reads the specification at path. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON. Profiles that break the profile
// invariants are kept and logged.
func Load(path string, logger *slog.Logger) ([]core.ColumnProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("filename '%s' %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("read specification: %w", err)
	}

	var profiles []core.ColumnProfile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		profiles, err = DecodeYAML(bytes.NewReader(data))
	default:
		profiles, err = DecodeJSON(bytes.NewReader(data))
	}
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	check(profiles, logger)
	return profiles, nil
}

// DecodeJSON decodes a JSON array of profiles.
func DecodeJSON(r io.Reader) ([]core.ColumnProfile, error) {
	var profiles []core.ColumnProfile
	if err := json.NewDecoder(r).Decode(&profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// DecodeYAML decodes a YAML list of profiles.
func DecodeYAML(r io.Reader) ([]core.ColumnProfile, error) {
	var profiles []core.ColumnProfile
	if err := yaml.NewDecoder(r).Decode(&profiles); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty document")
		}
		return nil, err
	}
	return profiles, nil
}

// Encode writes profiles as an indented JSON array.
func Encode(w io.Writer, profiles []core.ColumnProfile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(profiles)
}

func check(profiles []core.ColumnProfile, logger *slog.Logger) {
	if logger == nil {
		return
	}
	for i := range profiles {
		if err := profiles[i].Validate(); err != nil {
			logger.Warn("profile violates invariants", "column", profiles[i].Name, "error", err)
		}
	}
}
