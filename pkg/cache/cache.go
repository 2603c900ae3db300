package cache

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Forever is the expiry of responses cached without max-age.
var Forever = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

var (
	ErrMissingAge   = errors.New("max-age without Age header")
	ErrBadDirective = errors.New("invalid cache directive")
)

// Entry is a cached response body and the moment it goes stale.
type Entry struct {
	Body    string
	Expires time.Time
}

// Fresh reports whether the entry can still be served at now.
func (e Entry) Fresh(now time.Time) bool {
	return e.Expires.After(now)
}

// Cache maps request URLs to response bodies. Stale entries are ignored on
// lookup but not removed; the next successful fetch overwrites them.
// There is no size bound.
type Cache struct {
	// Clock returns the current time for freshness checks. Nil means
	// time.Now.
	Clock func() time.Time

	entries map[string]Entry
	mu      sync.RWMutex
}

func New() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Now returns the cache's notion of the current time.
func (c *Cache) Now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// Get returns the entry for key regardless of freshness.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Lookup returns the body for key if a fresh entry exists.
func (c *Cache) Lookup(key string) (string, bool) {
	e, ok := c.Get(key)
	if !ok || !e.Fresh(c.Now()) {
		return "", false
	}
	return e.Body, true
}

// Put stores body under key, replacing any previous entry.
func (c *Cache) Put(key, body string, expires time.Time) {
	c.mu.Lock()
	c.entries[key] = Entry{Body: body, Expires: expires}
	c.mu.Unlock()
}

// Len returns the number of entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Expiry applies the Cache-Control policy to a response header (lower-cased
// names). ok is false when the response must not be stored: no
// Cache-Control header, or a no-store directive. With max-age the expiry is
// now + max-age - Age, and the Age header is required. Without max-age the
// response never expires.
func Expiry(header map[string]string, now time.Time) (expires time.Time, ok bool, err error) {
	cc, present := header["cache-control"]
	if !present || strings.Contains(cc, "no-store") {
		return time.Time{}, false, nil
	}

	for _, directive := range strings.Split(cc, ",") {
		name, value, _ := strings.Cut(strings.TrimSpace(directive), "=")
		if !strings.EqualFold(strings.TrimSpace(name), "max-age") {
			continue
		}
		maxAge, err := parseSeconds(value)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: %q", ErrBadDirective, directive)
		}
		ageHeader, present := header["age"]
		if !present {
			return time.Time{}, false, ErrMissingAge
		}
		age, err := parseSeconds(ageHeader)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("%w: Age %q", ErrBadDirective, ageHeader)
		}
		remaining := maxAge - age
		if remaining > math.MaxInt64/int64(time.Second) {
			// Past what time.Duration can hold.
			return Forever, true, nil
		}
		return now.Add(time.Duration(remaining) * time.Second), true, nil
	}
	return Forever, true, nil
}

func parseSeconds(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.Trim(strings.TrimSpace(s), `"`), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("not a number of seconds: %q", s)
	}
	return n, nil
}
