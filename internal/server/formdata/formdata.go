// Package formdata is a small buffering multipart/form-data parser. It holds
// the whole body in memory and splits it on the boundary, so request size
// is bounded by available memory. Malformed parts are skipped rather than
// failing the request.
package formdata

import (
	"bytes"
	"errors"
	"strings"
)

var (
	ErrNotMultipart    = errors.New("content type is not multipart/form-data")
	ErrMissingBoundary = errors.New("no boundary in Content-Type")
)

var (
	crlf       = []byte("\r\n")
	headerSep  = []byte("\r\n\r\n")
	closeDelim = []byte("--")
)

// Part is one section of a multipart body. Header keys are lower-cased.
type Part struct {
	Header   map[string]string
	Name     string
	Filename string
	Body     []byte
}

// IsFile reports whether the part carried a non-empty filename.
func (p Part) IsFile() bool {
	return p.Filename != ""
}

// Boundary extracts the boundary parameter from a Content-Type header value.
func Boundary(contentType string) (string, error) {
	params := strings.Split(contentType, ";")
	if !strings.EqualFold(strings.TrimSpace(params[0]), "multipart/form-data") {
		return "", ErrNotMultipart
	}
	for _, p := range params[1:] {
		p = strings.TrimSpace(p)
		if !strings.HasPrefix(strings.ToLower(p), "boundary=") {
			continue
		}
		b := unquote(p[len("boundary="):])
		if b == "" {
			break
		}
		return b, nil
	}
	return "", ErrMissingBoundary
}

// Parse splits body on "--"+boundary and returns every well-formed part in
// order.
func Parse(body []byte, boundary string) []Part {
	segments := bytes.Split(body, []byte("--"+boundary))
	if len(segments) < 2 {
		return nil
	}

	var parts []Part
	// segments[0] is the preamble.
	for _, seg := range segments[1:] {
		if bytes.HasPrefix(seg, closeDelim) {
			break
		}
		seg = bytes.TrimPrefix(seg, crlf)
		if len(seg) == 0 {
			continue
		}

		i := bytes.Index(seg, headerSep)
		if i < 0 {
			continue
		}
		p := Part{
			Header: parseHeader(seg[:i]),
			Body:   bytes.TrimSuffix(seg[i+len(headerSep):], crlf),
		}
		p.Name, p.Filename = dispositionNames(p.Header["content-disposition"])
		parts = append(parts, p)
	}
	return parts
}

// FileParts keeps only the parts that carry a filename.
func FileParts(parts []Part) []Part {
	var files []Part
	for _, p := range parts {
		if p.IsFile() {
			files = append(files, p)
		}
	}
	return files
}

func parseHeader(block []byte) map[string]string {
	h := make(map[string]string)
	for _, line := range strings.Split(string(block), "\r\n") {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		h[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return h
}

// dispositionNames reads name= and filename= from a Content-Disposition
// value such as: form-data; name="file_upload"; filename="a.txt"
func dispositionNames(cd string) (name, filename string) {
	for _, param := range strings.Split(cd, ";") {
		param = strings.TrimSpace(param)
		switch {
		case strings.HasPrefix(param, "filename="):
			filename = unquote(strings.TrimSpace(param[len("filename="):]))
		case strings.HasPrefix(param, "name="):
			name = unquote(strings.TrimSpace(param[len("name="):]))
		}
	}
	return name, filename
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
