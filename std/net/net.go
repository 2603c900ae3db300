package net

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	gonet "net"
	"strconv"
	"strings"
	"time"

	"bowser/pkg/url"
)

const userAgent = "Bowser"

// DefaultClient sends requests with the default user agent and no timeout.
var DefaultClient = &Client{UserAgent: userAgent}

// Client performs single HTTP/1.1 exchanges over a fresh connection.
// It does not follow redirects and knows nothing about caching.
type Client struct {
	// UserAgent is sent with every request. Empty means "Bowser".
	UserAgent string

	// Timeout bounds the whole exchange, dial included. Zero means no
	// deadline, so an unresponsive server blocks until ctx is cancelled.
	Timeout time.Duration

	// Dialer opens the TCP connection. Nil uses a zero net.Dialer.
	Dialer *gonet.Dialer

	// TLSConfig is cloned for https connections; ServerName is always set
	// to the URL host.
	TLSConfig *tls.Config
}

// Do sends GET for u and reads the whole response.
func (c *Client) Do(ctx context.Context, u url.URL) (*Response, error) {
	if !u.IsNetwork() {
		return nil, fmt.Errorf("cannot fetch non-network URL: %s", u)
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	conn, err := c.dial(ctx, u)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if _, err := conn.Write(c.requestBytes(u)); err != nil {
		return nil, fmt.Errorf("sending request to %s: %w", u, err)
	}
	resp, err := ReadResponse(bufio.NewReader(conn))
	if err != nil {
		var ne gonet.Error
		if _, ok := ctx.Deadline(); ok && errors.As(err, &ne) && ne.Timeout() {
			<-ctx.Done()
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetching %s: %w", u, ctx.Err())
		}
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	return resp, nil
}

func (c *Client) dial(ctx context.Context, u url.URL) (gonet.Conn, error) {
	dialer := c.Dialer
	if dialer == nil {
		dialer = &gonet.Dialer{}
	}
	conn, err := dialer.DialContext(ctx, "tcp", u.Address())
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", u.Address(), err)
	}
	if u.Scheme != url.SchemeHTTPS {
		return conn, nil
	}

	cfg := &tls.Config{}
	if c.TLSConfig != nil {
		cfg = c.TLSConfig.Clone()
	}
	cfg.ServerName = u.Host
	tc := tls.Client(conn, cfg)
	if err := tc.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake with %s: %w", u.Host, err)
	}
	return tc, nil
}

// requestBytes renders the request head. The header set is fixed.
func (c *Client) requestBytes(u url.URL) []byte {
	ua := c.UserAgent
	if ua == "" {
		ua = userAgent
	}
	host := u.Host
	if u.Port != url.DefaultPort(u.Scheme) {
		host += ":" + strconv.Itoa(u.Port)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", u.Path)
	fmt.Fprintf(&b, "Host: %s\r\n", host)
	b.WriteString("Connection: keep-alive\r\n")
	fmt.Fprintf(&b, "User-Agent: %s\r\n", ua)
	b.WriteString("Accept-Encoding: gzip\r\n")
	b.WriteString("\r\n")
	return []byte(b.String())
}
