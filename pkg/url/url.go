package url

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// Schemes understood by the browser. Anything else becomes about:blank.
const (
	SchemeHTTP       = "http"
	SchemeHTTPS      = "https"
	SchemeFile       = "file"
	SchemeData       = "data"
	SchemeViewSource = "view-source"
	SchemeAbout      = "about"
)

// MaxRedirects is the number of redirects followed before a fetch gives up.
const MaxRedirects = 10

// Blank is the page shown for anything that cannot be parsed.
var Blank = URL{Scheme: SchemeAbout, Opaque: "blank"}

// URL is a parsed resource locator. Values are never mutated after Parse;
// redirects produce a new URL via Resolve.
type URL struct {
	Scheme string

	// Network and file schemes.
	Host string
	Port int
	Path string

	// data: scheme.
	MediaType string
	Data      string

	// Opaque holds the text after "about:".
	Opaque string

	// Inner is the wrapped locator of a view-source: URL.
	Inner *URL
}

// DefaultPort returns the well-known port for a network scheme, or 0.
func DefaultPort(scheme string) int {
	switch scheme {
	case SchemeHTTP:
		return 80
	case SchemeHTTPS:
		return 443
	}
	return 0
}

// Parse parses s. It never fails: unknown schemes and malformed input yield
// Blank, since the browser must always have something to show.
func Parse(s string) URL {
	s = strings.TrimSpace(s)

	var scheme, rest string
	var ok bool
	if isInline(s) {
		scheme, rest, ok = strings.Cut(s, ":")
	} else {
		scheme, rest, ok = strings.Cut(s, "://")
	}
	if !ok {
		return Blank
	}

	switch scheme {
	case SchemeHTTP, SchemeHTTPS:
		return parseNetwork(scheme, rest)
	case SchemeFile:
		return URL{Scheme: SchemeFile, Path: rest}
	case SchemeData:
		mediaType, data, ok := strings.Cut(rest, ",")
		if !ok {
			return Blank
		}
		return URL{Scheme: SchemeData, MediaType: mediaType, Data: data}
	case SchemeAbout:
		return URL{Scheme: SchemeAbout, Opaque: rest}
	case SchemeViewSource:
		inner := Parse(rest)
		return URL{Scheme: SchemeViewSource, Inner: &inner}
	}
	return Blank
}

// isInline matches the inline schemes as prefixes, so "http://x/about:y"
// stays an http URL.
func isInline(s string) bool {
	for _, p := range []string{SchemeData, SchemeAbout, SchemeViewSource} {
		if strings.HasPrefix(s, p+":") {
			return true
		}
	}
	return false
}

func parseNetwork(scheme, rest string) URL {
	if !strings.Contains(rest, "/") {
		rest += "/"
	}
	host, path, _ := strings.Cut(rest, "/")
	u := URL{Scheme: scheme, Port: DefaultPort(scheme), Path: "/" + path}

	if h, p, ok := strings.Cut(host, ":"); ok {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return Blank
		}
		host, u.Port = h, port
	}
	if host == "" {
		return Blank
	}
	if !isASCII(host) {
		ascii, err := idna.ToASCII(host)
		if err != nil {
			return Blank
		}
		host = ascii
	}
	u.Host = strings.ToLower(host)
	return u
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// IsNetwork reports whether u is fetched over a socket.
func (u URL) IsNetwork() bool {
	return u.Scheme == SchemeHTTP || u.Scheme == SchemeHTTPS
}

// IsBlank reports whether u is about:blank.
func (u URL) IsBlank() bool {
	return u.Scheme == SchemeAbout && u.Opaque == "blank"
}

// Address returns the host:port pair to dial.
func (u URL) Address() string {
	return u.Host + ":" + strconv.Itoa(u.Port)
}

// Resolve returns the URL a redirect to location points at. A location
// containing "://" replaces the whole URL; anything else replaces the path.
func (u URL) Resolve(location string) URL {
	location = strings.TrimSpace(location)
	if strings.Contains(location, "://") {
		return Parse(location)
	}
	next := u
	if !strings.HasPrefix(location, "/") {
		location = "/" + location
	}
	next.Path = location
	return next
}

func (u URL) String() string {
	switch u.Scheme {
	case SchemeHTTP, SchemeHTTPS:
		host := u.Host
		if u.Port != DefaultPort(u.Scheme) {
			host += ":" + strconv.Itoa(u.Port)
		}
		return u.Scheme + "://" + host + u.Path
	case SchemeFile:
		return "file://" + u.Path
	case SchemeData:
		return "data:" + u.MediaType + "," + u.Data
	case SchemeViewSource:
		if u.Inner == nil {
			return "view-source:"
		}
		return "view-source:" + u.Inner.String()
	}
	return "about:" + u.Opaque
}
