package loader

import (
	"sync"

	"github.com/zeebo/blake3"

	"github.com/JetF0x/RL-UPKSuite/upk"
)

// Cache is the process-wide store mapping container names to loaded
// containers. Readers may overlap; mutations serialize. Containers are
// published only after a successful decode, so a cached entry always has
// valid tables (its objects may still be materializing).
type Cache struct {
	mu         sync.RWMutex
	containers map[string]*upk.Container
	digests    map[string][32]byte
}

// NewCache returns an empty cache
func NewCache() *Cache {
	return &Cache{
		containers: make(map[string]*upk.Container),
		digests:    make(map[string][32]byte),
	}
}

// IsCached reports whether a container is loaded
func (c *Cache) IsCached(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.containers[name]
	return ok
}

// Get returns a loaded container
func (c *Cache) Get(name string) (*upk.Container, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ctr, ok := c.containers[name]
	return ctr, ok
}

// Add publishes a container under its name. raw is the plaintext stream
// the container was decoded from; its blake3 digest gives the entry a
// content identity.
func (c *Cache) Add(ctr *upk.Container, raw []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.containers[ctr.Name] = ctr
	c.digests[ctr.Name] = blake3.Sum256(raw)
}

// Resolve implements the resolver authority over cached entries only
func (c *Cache) Resolve(name string) (*upk.Container, bool) {
	return c.Get(name)
}

// Digest returns the content digest recorded when the container was added
func (c *Cache) Digest(name string) ([32]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.digests[name]
	return d, ok
}

// Evict drops a container. Callers that abort a load mid-materialization
// must evict by name; nothing else is rolled back.
func (c *Cache) Evict(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.containers, name)
	delete(c.digests, name)
}

// Names returns the cached container names
func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.containers))
	for name := range c.containers {
		out = append(out, name)
	}
	return out
}
