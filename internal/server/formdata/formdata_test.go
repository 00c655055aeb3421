package formdata

import (
	"errors"
	"strings"
	"testing"
)

func filePart(boundary, field, filename, content string) string {
	return "--" + boundary + "\r\n" +
		`Content-Disposition: form-data; name="` + field + `"; filename="` + filename + `"` + "\r\n" +
		"Content-Type: application/octet-stream\r\n" +
		"\r\n" +
		content + "\r\n"
}

func fieldPart(boundary, field, value string) string {
	return "--" + boundary + "\r\n" +
		`Content-Disposition: form-data; name="` + field + `"` + "\r\n" +
		"\r\n" +
		value + "\r\n"
}

func closing(boundary string) string {
	return "--" + boundary + "--\r\n"
}

func TestBoundary(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        string
		wantErr     error
	}{
		{"plain", "multipart/form-data; boundary=X", "X", nil},
		{"quoted", `multipart/form-data; boundary="----WebKitFormBoundary7MA4"`, "----WebKitFormBoundary7MA4", nil},
		{"extra params", "multipart/form-data; charset=utf-8; boundary=abc", "abc", nil},
		{"case-insensitive media type", "Multipart/Form-Data; boundary=abc", "abc", nil},
		{"missing boundary", "multipart/form-data", "", ErrMissingBoundary},
		{"empty boundary", `multipart/form-data; boundary=""`, "", ErrMissingBoundary},
		{"not multipart", "application/json", "", ErrNotMultipart},
		{"empty header", "", "", ErrNotMultipart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Boundary(tt.contentType)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Boundary(%q) = %q, want %q", tt.contentType, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("single file", func(t *testing.T) {
		body := "--X\r\nContent-Disposition: form-data; name=\"file_upload\"; filename=\"a.txt\"\r\n\r\nhello\r\n--X--\r\n"

		parts := Parse([]byte(body), "X")
		if len(parts) != 1 {
			t.Fatalf("expected 1 part, got %d", len(parts))
		}
		p := parts[0]
		if p.Filename != "a.txt" || p.Name != "file_upload" {
			t.Errorf("unexpected names: field=%q file=%q", p.Name, p.Filename)
		}
		if string(p.Body) != "hello" {
			t.Errorf("expected body 'hello', got %q", p.Body)
		}
		if _, ok := p.Header["content-disposition"]; !ok {
			t.Errorf("expected lower-cased header key, got %v", p.Header)
		}
	})

	t.Run("two files and a field", func(t *testing.T) {
		body := filePart("B", "file_upload", "one.txt", "first") +
			fieldPart("B", "note", "ignored") +
			filePart("B", "file_upload", "two.bin", "second\r\nline") +
			closing("B")

		parts := Parse([]byte(body), "B")
		if len(parts) != 3 {
			t.Fatalf("expected 3 parts, got %d", len(parts))
		}
		files := FileParts(parts)
		if len(files) != 2 {
			t.Fatalf("expected 2 file parts, got %d", len(files))
		}
		if files[0].Filename != "one.txt" || files[1].Filename != "two.bin" {
			t.Errorf("unexpected order: %q, %q", files[0].Filename, files[1].Filename)
		}
		if string(files[1].Body) != "second\r\nline" {
			t.Errorf("expected inner CRLF preserved, got %q", files[1].Body)
		}
	})

	t.Run("zero-byte file", func(t *testing.T) {
		body := filePart("B", "file_upload", "empty.txt", "") + closing("B")

		files := FileParts(Parse([]byte(body), "B"))
		if len(files) != 1 {
			t.Fatalf("expected 1 file part, got %d", len(files))
		}
		if len(files[0].Body) != 0 {
			t.Errorf("expected empty body, got %q", files[0].Body)
		}
	})

	t.Run("malformed segment is skipped", func(t *testing.T) {
		body := "--B\r\nContent-Disposition: form-data; name=\"file_upload\"; filename=\"bad.txt\"\r\nno blank line here\r\n" +
			filePart("B", "file_upload", "good.txt", "ok") +
			closing("B")

		files := FileParts(Parse([]byte(body), "B"))
		if len(files) != 1 || files[0].Filename != "good.txt" {
			t.Fatalf("expected only good.txt, got %+v", files)
		}
	})

	t.Run("empty filename is not a file", func(t *testing.T) {
		body := filePart("B", "file_upload", "", "unused") + closing("B")

		parts := Parse([]byte(body), "B")
		if len(parts) != 1 {
			t.Fatalf("expected 1 part, got %d", len(parts))
		}
		if parts[0].IsFile() {
			t.Error("expected part without filename to not be a file")
		}
		if len(FileParts(parts)) != 0 {
			t.Error("expected no file parts")
		}
	})

	t.Run("unquoted filename", func(t *testing.T) {
		body := "--B\r\nContent-Disposition: form-data; name=file_upload; filename=plain.txt\r\n\r\nx\r\n--B--"

		files := FileParts(Parse([]byte(body), "B"))
		if len(files) != 1 || files[0].Filename != "plain.txt" {
			t.Fatalf("expected plain.txt, got %+v", files)
		}
	})

	t.Run("body ending in dashes is kept intact", func(t *testing.T) {
		body := filePart("B", "file_upload", "dash.txt", "a--") + closing("B")

		files := FileParts(Parse([]byte(body), "B"))
		if len(files) != 1 || string(files[0].Body) != "a--" {
			t.Fatalf("expected body 'a--', got %+v", files)
		}
	})

	t.Run("preamble and epilogue are ignored", func(t *testing.T) {
		body := "this is a preamble\r\n" +
			filePart("B", "file_upload", "a.txt", "a") +
			closing("B") +
			"epilogue\r\n\r\nnot a part"

		files := FileParts(Parse([]byte(body), "B"))
		if len(files) != 1 || files[0].Filename != "a.txt" {
			t.Fatalf("expected only a.txt, got %+v", files)
		}
	})

	t.Run("no boundary occurrence", func(t *testing.T) {
		if parts := Parse([]byte("garbage"), "B"); parts != nil {
			t.Errorf("expected nil, got %+v", parts)
		}
	})

	t.Run("large body", func(t *testing.T) {
		content := strings.Repeat("z", 1<<20)
		body := filePart("B", "file_upload", "big.bin", content) + closing("B")

		files := FileParts(Parse([]byte(body), "B"))
		if len(files) != 1 || len(files[0].Body) != len(content) {
			t.Fatalf("expected %d bytes, got %+v", len(content), len(files))
		}
	})
}
