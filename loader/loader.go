package loader

import (
	"encoding/hex"
	"io"

	"go.uber.org/zap"

	uerrors "github.com/JetF0x/RL-UPKSuite/errors"
	"github.com/JetF0x/RL-UPKSuite/loader/internal/graph"
	"github.com/JetF0x/RL-UPKSuite/upk"
)

// Source maps a container name to its plaintext byte stream. The manifest
// package provides the file-backed implementation.
type Source interface {
	Open(name string) (io.ReadCloser, error)
}

// Loader orchestrates container loads: decode, seed the dependency graph
// from every table row, sort, and materialize objects in order. Loading is
// recursive by transitivity; resolving an import pulls its container
// through the same source.
type Loader struct {
	cache  *Cache
	source Source
	codecs upk.Codecs

	// Registry supplies per-class body codecs for materialization. It
	// defaults to the identity registry.
	Registry *upk.CodecRegistry

	// OnDecode, when set, runs on every freshly decoded container before it
	// is published to the cache. Callers use it to register the native
	// classes their containers expect.
	OnDecode func(c *upk.Container)
}

// New builds a loader over a cache and a source
func New(cache *Cache, source Source, codecs upk.Codecs) *Loader {
	return &Loader{
		cache:    cache,
		source:   source,
		codecs:   codecs,
		Registry: upk.NewCodecRegistry(),
	}
}

// Cache returns the loader's container cache
func (l *Loader) Cache() *Cache { return l.cache }

// Resolve implements the resolver authority: cached containers are
// returned as-is, unknown names are decoded from the source on demand.
// Failures are logged and reported as absence; Load surfaces them as
// UnresolvedContainer at the call site.
func (l *Loader) Resolve(name string) (*upk.Container, bool) {
	if c, ok := l.cache.Get(name); ok {
		return c, true
	}
	c, err := l.loadContainer(name)
	if err != nil {
		Logger().Warn("container resolution failed",
			zap.String("container", name),
			zap.Error(err))
		return nil, false
	}
	return c, true
}

func (l *Loader) loadContainer(name string) (*upk.Container, error) {
	rc, err := l.source.Open(name)
	if err != nil {
		return nil, uerrors.New(uerrors.PhaseLoad, uerrors.KindNotFound).
			Container(name).
			Cause(err).
			Detail("open container source").
			Build()
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, uerrors.IO(uerrors.PhaseLoad, name, err)
	}

	c, err := upk.Decode(data, name, l.codecs)
	if err != nil {
		return nil, err
	}
	c.SetResolver(l)
	c.SetCodecRegistry(l.Registry)
	if l.OnDecode != nil {
		l.OnDecode(c)
	}
	l.cache.Add(c, data)

	digest, _ := l.cache.Digest(name)
	Logger().Debug("container cached",
		zap.String("container", name),
		zap.String("digest", hex.EncodeToString(digest[:8])))
	return c, nil
}

// Load decodes a container, resolves the transitive closure of everything
// its rows reference, and materializes all objects in topological order.
// Every row of the returned container is materialized; in the other
// containers the closure pulled in, only the objects it reaches are. A name
// already in the cache is returned as it is, without resolving or
// materializing anything.
func (l *Loader) Load(name string) (*upk.Container, error) {
	if c, ok := l.cache.Get(name); ok {
		return c, nil
	}
	c, err := l.loadContainer(name)
	if err != nil {
		return nil, err
	}

	g := graph.New()
	res := NewResolver(l, g)
	for i := range c.Exports {
		if err := res.AddObjectDependencies(graph.TableRef(name, upk.FromExport(i))); err != nil {
			return nil, err
		}
	}
	for i := range c.Imports {
		if err := res.AddObjectDependencies(graph.TableRef(name, upk.FromImport(i))); err != nil {
			return nil, err
		}
	}

	order, err := g.TopoSort()
	if err != nil {
		return nil, err
	}

	for _, n := range order {
		if n.IsNative() {
			continue
		}
		tc, ok := l.Resolve(n.Container)
		if !ok {
			return nil, uerrors.UnresolvedContainer(n.Container)
		}
		if _, err := tc.CreateObject(n.Index); err != nil {
			return nil, err
		}
	}

	Logger().Info("container loaded",
		zap.String("container", name),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("exports", len(c.Exports)),
		zap.Int("imports", len(c.Imports)))
	return c, nil
}
