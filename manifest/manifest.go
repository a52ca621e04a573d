// Package manifest maps container names to the files that hold them.
//
// A manifest is a YAML document listing every container a session may
// load, with an optional per-entry compression scheme. Open hands the
// loader a plaintext stream regardless of how the file is stored on disk.
package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"
	"gopkg.in/yaml.v3"

	uerrors "github.com/JetF0x/RL-UPKSuite/errors"
)

// Compression schemes accepted in manifest entries
const (
	CompressionNone = ""
	CompressionZlib = "zlib"
)

// Entry describes one container file
type Entry struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path"`
	Compression string `yaml:"compression,omitempty"`
}

type document struct {
	Containers []Entry `yaml:"containers"`
}

// Manifest resolves container names to plaintext streams. Relative entry
// paths are resolved against the manifest file's directory.
type Manifest struct {
	dir     string
	entries map[string]Entry
}

// Load reads a manifest file
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, uerrors.IO(uerrors.PhaseLoad, "", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// Parse reads a manifest from YAML bytes
func Parse(data []byte) (*Manifest, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, uerrors.New(uerrors.PhaseLoad, uerrors.KindInvalidInput).
			Cause(err).
			Detail("parse manifest").
			Build()
	}
	m := &Manifest{entries: make(map[string]Entry, len(doc.Containers))}
	for _, e := range doc.Containers {
		if e.Name == "" || e.Path == "" {
			return nil, uerrors.InvalidInput(uerrors.PhaseLoad,
				"manifest entries need both name and path")
		}
		switch e.Compression {
		case CompressionNone, CompressionZlib:
		default:
			return nil, uerrors.InvalidInput(uerrors.PhaseLoad,
				fmt.Sprintf("unknown compression %q for container %s", e.Compression, e.Name))
		}
		if _, dup := m.entries[e.Name]; dup {
			return nil, uerrors.InvalidInput(uerrors.PhaseLoad,
				fmt.Sprintf("duplicate container %s", e.Name))
		}
		m.entries[e.Name] = e
	}
	return m, nil
}

// Add registers an entry programmatically
func (m *Manifest) Add(e Entry) {
	if m.entries == nil {
		m.entries = make(map[string]Entry)
	}
	m.entries[e.Name] = e
}

// Names returns the known container names
func (m *Manifest) Names() []string {
	out := make([]string, 0, len(m.entries))
	for name := range m.entries {
		out = append(out, name)
	}
	return out
}

// Open returns the plaintext stream for a container, inflating compressed
// sources transparently.
func (m *Manifest) Open(name string) (io.ReadCloser, error) {
	e, ok := m.entries[name]
	if !ok {
		return nil, uerrors.NotFound(uerrors.PhaseLoad, "container", name)
	}
	path := e.Path
	if !filepath.IsAbs(path) && m.dir != "" {
		path = filepath.Join(m.dir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, uerrors.IO(uerrors.PhaseLoad, name, err)
	}
	if e.Compression == CompressionZlib {
		zr, err := zlib.NewReader(f)
		if err != nil {
			f.Close()
			return nil, uerrors.IO(uerrors.PhaseLoad, name, err)
		}
		return &inflateCloser{Reader: zr, file: f}, nil
	}
	return f, nil
}

// inflateCloser closes both the inflater and the underlying file
type inflateCloser struct {
	io.Reader
	file *os.File
}

func (c *inflateCloser) Close() error {
	var first error
	if rc, ok := c.Reader.(io.Closer); ok {
		first = rc.Close()
	}
	if err := c.file.Close(); first == nil {
		first = err
	}
	return first
}
