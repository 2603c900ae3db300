package net

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
)

// MaxBodySize caps both the framed and the decompressed body.
const MaxBodySize = 128 * 1024 * 1024 // 128 MB

var (
	ErrMalformedStatus     = errors.New("malformed status line")
	ErrMalformedHeader     = errors.New("malformed header line")
	ErrBadContentLength    = errors.New("invalid Content-Length")
	ErrBadChunk            = errors.New("invalid chunk size")
	ErrUnsupportedEncoding = errors.New("unsupported content encoding")
	ErrBodyTooLarge        = errors.New("response body exceeds maximum allowed size")
)

// Response is a fully read HTTP response. Header names are lower-cased and
// values trimmed; a repeated header keeps its last value.
type Response struct {
	Version string
	Status  int
	Reason  string
	Header  map[string]string
	Body    []byte
}

// IsRedirect reports whether the status is in [300, 400).
func (r *Response) IsRedirect() bool {
	return r.Status >= 300 && r.Status < 400
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

func (r *Response) isInterim() bool {
	return r.Status >= 100 && r.Status < 200 && r.Status != 101
}

// hasBody reports whether a body follows the header block. Redirect bodies
// are never read: the connection is dropped and the redirect re-requested.
func (r *Response) hasBody() bool {
	switch {
	case r.Status < 200, r.IsRedirect(), r.Status == 204:
		return false
	}
	return true
}

// ReadResponse parses a status line, header block and body from br and
// undoes any transfer and content encodings.
//
// Interim 1xx responses (100 Continue, 103 Early Hints) are skipped;
// 101 is returned as is.
func ReadResponse(br *bufio.Reader) (*Response, error) {
	var resp *Response
	for {
		line, err := readLine(br)
		if err != nil {
			return nil, fmt.Errorf("reading status line: %w", err)
		}
		resp, err = parseStatusLine(line)
		if err != nil {
			return nil, err
		}
		resp.Header, err = readHeader(br)
		if err != nil {
			return nil, err
		}
		if !resp.isInterim() {
			break
		}
	}
	if !resp.hasBody() {
		return resp, nil
	}

	raw, err := readBody(br, resp.Header)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	resp.Body, err = decodeContent(raw, resp.Header["content-encoding"])
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func parseStatusLine(line string) (*Response, error) {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/") {
		return nil, fmt.Errorf("%w: %q", ErrMalformedStatus, line)
	}
	status, err := strconv.Atoi(parts[1])
	if err != nil || status < 100 || status > 999 {
		return nil, fmt.Errorf("%w: %q", ErrMalformedStatus, line)
	}
	resp := &Response{Version: parts[0], Status: status}
	if len(parts) == 3 {
		resp.Reason = parts[2]
	}
	return resp, nil
}

func readHeader(br *bufio.Reader) (map[string]string, error) {
	header := make(map[string]string)
	for {
		line, err := readLine(br)
		if err != nil {
			return nil, fmt.Errorf("reading headers: %w", err)
		}
		if line == "" {
			return header, nil
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}
		header[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
}

func readBody(br *bufio.Reader, header map[string]string) ([]byte, error) {
	if strings.EqualFold(header["transfer-encoding"], "chunked") {
		return readChunked(br)
	}
	if cl, ok := header["content-length"]; ok {
		n, err := strconv.ParseInt(cl, 10, 64)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: %q", ErrBadContentLength, cl)
		}
		if n > MaxBodySize {
			return nil, ErrBodyTooLarge
		}
		body := make([]byte, n)
		if _, err := io.ReadFull(br, body); err != nil {
			return nil, err
		}
		return body, nil
	}
	// No framing: the body runs until the server closes the connection.
	return readLimited(br)
}

// readChunked decodes a chunked body: "<hex-size>\r\n<bytes>\r\n" repeated
// until a zero-size chunk. Chunk extensions and trailers are discarded.
func readChunked(br *bufio.Reader) ([]byte, error) {
	var body bytes.Buffer
	for {
		line, err := readLine(br)
		if err != nil {
			return nil, fmt.Errorf("reading chunk size: %w", err)
		}
		size, _, _ := strings.Cut(line, ";")
		n, err := strconv.ParseUint(strings.TrimSpace(size), 16, 63)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadChunk, line)
		}
		if n == 0 {
			break
		}
		if uint64(body.Len())+n > MaxBodySize {
			return nil, ErrBodyTooLarge
		}
		if _, err := io.CopyN(&body, br, int64(n)); err != nil {
			return nil, fmt.Errorf("reading chunk: %w", err)
		}
		if _, err := br.Discard(2); err != nil {
			return nil, fmt.Errorf("reading chunk terminator: %w", err)
		}
	}
	for {
		line, err := readLine(br)
		if err != nil || line == "" {
			break
		}
	}
	return body.Bytes(), nil
}

func decodeContent(raw []byte, encoding string) ([]byte, error) {
	switch strings.ToLower(encoding) {
	case "", "identity":
		return raw, nil
	case "gzip", "x-gzip":
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decompress: %w", err)
		}
		defer r.Close()
		return readLimited(r)
	case "br":
		return readLimited(brotli.NewReader(bytes.NewReader(raw)))
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBodySize {
		return nil, ErrBodyTooLarge
	}
	return data, nil
}

// readLine reads one CRLF- or LF-terminated line without its terminator.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
