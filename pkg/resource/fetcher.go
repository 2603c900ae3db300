package resource

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"bowser/pkg/cache"
	"bowser/pkg/url"
	stdnet "bowser/std/net"
)

// RedirectsExceeded is returned as the page body when a chain of redirects
// is longer than url.MaxRedirects. It is shown like any other page.
const RedirectsExceeded = "ERROR: Maximum redirects exceeded"

var ErrMissingLocation = errors.New("redirect without Location header")

// Fetcher retrieves the text of a resource.
type Fetcher interface {
	Request(ctx context.Context, u url.URL) (string, error)
}

// Loader fetches every scheme the browser knows. Network responses go
// through the shared response cache.
type Loader struct {
	client *stdnet.Client
	cache  *cache.Cache

	// Logger receives cache and redirect events. Nil discards them.
	Logger *log.Logger

	// ReadFile reads file: URLs. Nil means os.ReadFile.
	ReadFile func(name string) ([]byte, error)
}

// NewLoader returns a loader using client and c. A nil client means
// stdnet.DefaultClient and a nil cache gets a fresh one.
func NewLoader(client *stdnet.Client, c *cache.Cache) *Loader {
	if client == nil {
		client = stdnet.DefaultClient
	}
	if c == nil {
		c = cache.New()
	}
	return &Loader{client: client, cache: c}
}

func (l *Loader) Cache() *cache.Cache {
	return l.cache
}

func (l *Loader) logf(format string, args ...any) {
	if l.Logger != nil {
		l.Logger.Printf(format, args...)
	}
}

// Request returns the decoded body of u.
func (l *Loader) Request(ctx context.Context, u url.URL) (string, error) {
	switch u.Scheme {
	case url.SchemeFile:
		readFile := l.ReadFile
		if readFile == nil {
			readFile = os.ReadFile
		}
		data, err := readFile(u.Path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", u.Path, err)
		}
		return string(data), nil
	case url.SchemeData:
		return u.Data, nil
	case url.SchemeViewSource:
		if u.Inner == nil {
			return "", nil
		}
		return l.Request(ctx, *u.Inner)
	case url.SchemeHTTP, url.SchemeHTTPS:
		return l.fetch(ctx, u)
	}
	return "", nil
}

// fetch serves u from the cache or the network, following up to
// url.MaxRedirects redirects. The cache key is always the URL originally
// asked for, not the one the redirects ended at.
func (l *Loader) fetch(ctx context.Context, u url.URL) (string, error) {
	key := u.String()
	if body, ok := l.cache.Lookup(key); ok {
		l.logf("cache hit %s", key)
		return body, nil
	}

	for redirects := 0; ; redirects++ {
		resp, err := l.client.Do(ctx, u)
		if err != nil {
			return "", err
		}
		if !resp.IsRedirect() {
			return l.store(key, resp)
		}
		if redirects >= url.MaxRedirects {
			l.logf("giving up on %s after %d redirects", key, redirects)
			return RedirectsExceeded, nil
		}

		location, ok := resp.Header["location"]
		if !ok {
			return "", fmt.Errorf("fetching %s: status %d: %w", u, resp.Status, ErrMissingLocation)
		}
		next := u.Resolve(location)
		if !next.IsNetwork() {
			return "", fmt.Errorf("fetching %s: redirect to unsupported location %q", u, location)
		}
		l.logf("redirect %d: %s -> %s", redirects+1, u, next)
		u = next
	}
}

// store writes a final response to the cache when its Cache-Control allows
// and returns the body.
func (l *Loader) store(key string, resp *stdnet.Response) (string, error) {
	body := resp.Text()
	expires, ok, err := cache.Expiry(resp.Header, l.cache.Now())
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", key, err)
	}
	if ok {
		l.cache.Put(key, body, expires)
		l.logf("cached %s until %s", key, expires.Format("2006-01-02 15:04:05"))
	}
	return body, nil
}
