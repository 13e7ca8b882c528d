// Package directory caches the doctor list for the active triage outcome.
package directory

import (
	"github.com/ashureev/swasthya-bandhu/internal/domain"
)

// Ticket identifies one fetch. Only the latest ticket may resolve.
type Ticket struct {
	seq        uint64
	Specialist string
}

// Cache holds the most recently fetched doctors for one specialist. It is
// not cumulative: every successful fetch replaces the whole list.
type Cache struct {
	specialist string
	doctors    []domain.Doctor
	seq        uint64
	pending    bool
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{}
}

// Begin records a new fetch for specialist and supersedes any pending one.
func (c *Cache) Begin(specialist string) Ticket {
	c.seq++
	c.pending = true
	return Ticket{seq: c.seq, Specialist: specialist}
}

// Cancel supersedes a pending fetch without issuing a new one.
func (c *Cache) Cancel() {
	if c.pending {
		c.seq++
		c.pending = false
	}
}

// Pending reports whether a fetch is outstanding.
func (c *Cache) Pending() bool {
	return c.pending
}

// Current reports whether t is the latest outstanding fetch.
func (c *Cache) Current(t Ticket) bool {
	return c.pending && t.seq == c.seq
}

// Resolve replaces the cache with doctors if t is current.
func (c *Cache) Resolve(t Ticket, doctors []domain.Doctor) bool {
	if !c.Current(t) {
		return false
	}
	c.pending = false
	c.specialist = t.Specialist
	c.doctors = make([]domain.Doctor, len(doctors))
	copy(c.doctors, doctors)
	return true
}

// Fail clears the pending flag for t and leaves the cached list untouched.
func (c *Cache) Fail(t Ticket) bool {
	if !c.Current(t) {
		return false
	}
	c.pending = false
	return true
}

// Specialist returns the specialist of the cached list.
func (c *Cache) Specialist() string {
	return c.specialist
}

// Doctors returns a copy of the cached list.
func (c *Cache) Doctors() []domain.Doctor {
	out := make([]domain.Doctor, len(c.doctors))
	copy(out, c.doctors)
	return out
}

// Find looks up a cached doctor by id.
func (c *Cache) Find(id int) (domain.Doctor, bool) {
	for _, d := range c.doctors {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Doctor{}, false
}
