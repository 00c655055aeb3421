// Package render turns a directory listing into an HTML page.
package render

import (
	"fmt"
	"html/template"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"lanshare/internal/server/storage"
)

// Renderer writes a listing page for one directory.
type Renderer interface {
	Render(w io.Writer, l *Listing) error
}

// Listing is the view model shared by every theme.
type Listing struct {
	Title  string
	Path   string // URL path of the directory, always ending in "/"
	Parent string // empty at the root
	Rows   []Row
}

type Row struct {
	Name     string
	Href     string
	IsDir    bool
	Size     string
	Modified string
	// Deletable rows are files in the shared root, the only ones the
	// download and delete endpoints can address.
	Deletable bool
}

// NewListing builds the view model for dir, whose entries are already
// filtered and sorted by the store.
func NewListing(urlPath string, entries []storage.Entry) *Listing {
	if !strings.HasSuffix(urlPath, "/") {
		urlPath += "/"
	}
	l := &Listing{
		Title: "Directory listing for " + urlPath,
		Path:  urlPath,
	}
	atRoot := urlPath == "/"
	if !atRoot {
		l.Parent = escapePath(path.Dir(strings.TrimSuffix(urlPath, "/")))
		if !strings.HasSuffix(l.Parent, "/") {
			l.Parent += "/"
		}
	}

	for _, e := range entries {
		row := Row{
			Name:     e.Name,
			Href:     escapePath(urlPath + e.Name),
			IsDir:    e.IsDir,
			Modified: formatTime(e.ModTime),
		}
		if e.IsDir {
			row.Name += "/"
			row.Href += "/"
			row.Size = "-"
		} else {
			row.Size = FormatSize(e.Size)
			row.Deletable = atRoot
			if atRoot {
				row.Href = "/download?file=" + url.QueryEscape(e.Name)
			}
		}
		l.Rows = append(l.Rows, row)
	}
	return l
}

// New returns the renderer for a theme name.
func New(theme string) (Renderer, error) {
	switch strings.ToLower(theme) {
	case "", "classic":
		return &templateRenderer{tpl: classicTemplate}, nil
	case "modern":
		return &templateRenderer{tpl: modernTemplate}, nil
	default:
		return nil, fmt.Errorf("unknown listing theme %q", theme)
	}
}

type templateRenderer struct {
	tpl *template.Template
}

func (r *templateRenderer) Render(w io.Writer, l *Listing) error {
	return r.tpl.Execute(w, l)
}

// FormatSize renders a byte count with one decimal, e.g. "1.5 KB".
func FormatSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// listingScript is embedded by every theme.
const listingScript = uploadScript + deleteScript

// uploadScript posts the form through XHR to show progress, speed and
// elapsed time. Without JavaScript the plain form post still works.
const uploadScript = `
<script>
document.addEventListener("DOMContentLoaded", function () {
  const form = document.getElementById("upload-form");
  const bar = document.getElementById("upload-progress");
  const status = document.getElementById("status");
  if (!form || !window.FormData) return;

  form.addEventListener("submit", function (ev) {
    const input = form.querySelector("input[type=file]");
    if (!input.files.length) return;
    ev.preventDefault();

    const started = Date.now();
    const xhr = new XMLHttpRequest();
    xhr.open("POST", form.action);
    bar.hidden = false;
    bar.value = 0;

    xhr.upload.onprogress = function (e) {
      if (!e.lengthComputable) return;
      const secs = (Date.now() - started) / 1000;
      const speed = secs > 0 ? e.loaded / secs : 0;
      bar.value = Math.round(e.loaded / e.total * 100);
      status.textContent = bar.value + "% at " + formatBytes(speed) + "/s, " + secs.toFixed(1) + "s elapsed";
    };
    xhr.onload = function () {
      if (xhr.status >= 200 && xhr.status < 400) {
        location.reload();
        return;
      }
      status.textContent = "Upload failed: " + xhr.status + " " + xhr.statusText;
    };
    xhr.onerror = function () {
      status.textContent = "Upload failed: network error";
    };
    xhr.send(new FormData(form));
  });
});

function formatBytes(n) {
  const units = ["B", "KB", "MB", "GB"];
  let i = 0;
  while (n >= 1024 && i < units.length - 1) { n /= 1024; i++; }
  return n.toFixed(1) + " " + units[i];
}
</script>`

// deleteScript is shared by both themes. It reads the filename from the
// button's data attribute and waits for the operator's decision.
const deleteScript = `
<script>
async function requestDelete(btn) {
  const file = btn.dataset.file;
  if (!confirm("Ask the server operator to delete " + file + "?")) return;
  btn.disabled = true;
  const status = document.getElementById("status");
  status.textContent = "Waiting for approval to delete " + file + "...";
  try {
    const resp = await fetch("/delete", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify({file: file, action: "request"})
    });
    const data = await resp.json();
    if (resp.ok) {
      location.reload();
      return;
    }
    status.textContent = data.error || "Delete failed";
  } catch (e) {
    status.textContent = "Delete failed: " + e;
  }
  btn.disabled = false;
}
</script>`
