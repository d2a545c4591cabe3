package catalog

import "sync"

// Cache is an in-memory, RW-locked snapshot of the job catalog. A
// single writer swaps the whole map atomically on refresh; readers
// never block each other and never see a partially-updated catalog.
type Cache struct {
	mu   sync.RWMutex
	byID map[string]*Job // keyed by job_name
}

// NewCache returns an empty cache. Callers should call Replace once
// with the initial catalog snapshot before serving reads.
func NewCache() *Cache {
	return &Cache{byID: make(map[string]*Job)}
}

// Get returns the job for name and whether it was present.
func (c *Cache) Get(name string) (*Job, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	job, ok := c.byID[name]
	return job, ok
}

// All returns a snapshot slice of every cached job.
func (c *Cache) All() []*Job {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Job, 0, len(c.byID))
	for _, j := range c.byID {
		out = append(out, j)
	}
	return out
}

// Replace atomically swaps the whole cache contents with jobs.
func (c *Cache) Replace(jobs []*Job) {
	next := make(map[string]*Job, len(jobs))
	for _, j := range jobs {
		next[j.JobName] = j
	}
	c.mu.Lock()
	c.byID = next
	c.mu.Unlock()
}

// Put upserts a single job, used after a direct write (job creation,
// or a search cache-miss fallback) instead of waiting for the next
// Listener-driven Replace.
func (c *Cache) Put(job *Job) {
	c.mu.Lock()
	c.byID[job.JobName] = job
	c.mu.Unlock()
}

// Remove evicts a job by name.
func (c *Cache) Remove(name string) {
	c.mu.Lock()
	delete(c.byID, name)
	c.mu.Unlock()
}

// Len reports the number of cached jobs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
