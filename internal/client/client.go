// Package client talks to a running share server from the command line.
package client

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// UploadField is the form field the server's upload form uses.
const UploadField = "file_upload"

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL. Delete requests wait for
// the operator, so no overall request timeout is set.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			// The server answers uploads with a redirect to the listing.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// SentFile is reported for every uploaded file.
type SentFile struct {
	Name   string
	Size   int64
	Digest string // hex BLAKE2b-256, matches the server's "upload stored" log
	// Stored is set once the server reports a file of the same name and
	// size. The upload response itself is a redirect either way.
	Stored bool
}

// Upload sends files as one multipart request, streaming them from disk,
// then checks which of them the server kept.
func (c *Client) Upload(ctx context.Context, files []ParsedPath) ([]SentFile, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	sent := make([]SentFile, 0, len(files))
	done := make(chan error, 1)

	go func() {
		for _, f := range files {
			sf, err := writePart(mw, f)
			if err != nil {
				pw.CloseWithError(err)
				done <- err
				return
			}
			sent = append(sent, sf)
		}
		err := mw.Close()
		pw.CloseWithError(err)
		done <- err
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", pr)
	if err != nil {
		pr.Close()
		return nil, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	// Unblock the writer if the server answered before reading everything.
	pr.Close()
	werr := <-done
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if werr != nil {
		return nil, fmt.Errorf("upload aborted: %w", werr)
	}
	if resp.StatusCode != http.StatusSeeOther && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return nil, fmt.Errorf("upload failed: server returned %s", resp.Status)
	}

	for i := range sent {
		size, err := c.Stat(ctx, sent[i].Name)
		if err != nil {
			return sent, err
		}
		sent[i].Stored = size == sent[i].Size
	}
	return sent, nil
}

// Stat returns the size of name in the shared root, or -1 when the server
// does not serve it.
func (c *Client) Stat(ctx context.Context, name string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+"/download?file="+url.QueryEscape(name), nil)
	if err != nil {
		return -1, fmt.Errorf("failed to build stat request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return -1, fmt.Errorf("stat %s failed: %w", name, err)
	}
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.ContentLength, nil
	case http.StatusNotFound:
		return -1, nil
	default:
		return -1, fmt.Errorf("stat %s failed: server returned %s", name, resp.Status)
	}
}

func writePart(mw *multipart.Writer, f ParsedPath) (SentFile, error) {
	src, err := os.Open(f.FullPath)
	if err != nil {
		return SentFile{}, fmt.Errorf("failed to open %s: %w", f.FullPath, err)
	}
	defer src.Close()

	part, err := mw.CreateFormFile(UploadField, f.Name)
	if err != nil {
		return SentFile{}, err
	}
	hasher, _ := blake2b.New256(nil)
	n, err := io.Copy(io.MultiWriter(part, hasher), src)
	if err != nil {
		return SentFile{}, fmt.Errorf("failed to read %s: %w", f.FullPath, err)
	}
	return SentFile{Name: f.Name, Size: n, Digest: hex.EncodeToString(hasher.Sum(nil))}, nil
}

// DeleteResponse mirrors the server's JSON delete reply.
type DeleteResponse struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
	Token  string `json:"token,omitempty"`
}

// DeleteError is returned when the server refuses or fails a delete.
type DeleteError struct {
	StatusCode int
	Response   DeleteResponse
}

func (e *DeleteError) Error() string {
	msg := e.Response.Error
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("delete failed (%d): %s", e.StatusCode, msg)
}

// RequestDelete asks the server to delete name and waits for the
// operator's answer.
func (c *Client) RequestDelete(ctx context.Context, name string) (*DeleteResponse, error) {
	return c.postDelete(ctx, map[string]string{"file": name, "action": "request"})
}

// ConfirmDelete completes a pending delete identified by token.
func (c *Client) ConfirmDelete(ctx context.Context, name, token string) (*DeleteResponse, error) {
	return c.postDelete(ctx, map[string]string{"file": name, "action": "confirm", "token": token})
}

func (c *Client) postDelete(ctx context.Context, payload map[string]string) (*DeleteResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/delete", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build delete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("delete failed: %w", err)
	}
	defer resp.Body.Close()

	var out DeleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode delete response (%s): %w", resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &out, &DeleteError{StatusCode: resp.StatusCode, Response: out}
	}
	return &out, nil
}

// AuditEntry mirrors one row of the server's delete audit trail.
type AuditEntry struct {
	ID          int64     `json:"id"`
	Token       string    `json:"token"`
	Filename    string    `json:"filename"`
	ClientAddr  string    `json:"client_addr"`
	Decision    string    `json:"decision"`
	RequestedAt time.Time `json:"requested_at"`
	DecidedAt   time.Time `json:"decided_at"`
}

// Audit fetches the recorded decisions for a delete token.
func (c *Client) Audit(ctx context.Context, token string) ([]AuditEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/audit?token="+url.QueryEscape(token), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build audit request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audit lookup failed: %w", err)
	}
	defer resp.Body.Close()

	var out struct {
		Error   string       `json:"error"`
		Entries []AuditEntry `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode audit response (%s): %w", resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("audit lookup failed (%d): %s", resp.StatusCode, msg)
	}
	return out.Entries, nil
}
