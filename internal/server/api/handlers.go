package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"lanshare/internal/server/database"
	"lanshare/internal/server/render"
	"lanshare/internal/server/service"
	"lanshare/internal/server/storage"

	"github.com/labstack/echo/v4"
)

// AuditLog is the read side of the delete audit trail.
type AuditLog interface {
	ListByToken(ctx context.Context, token string) ([]*database.DeleteAudit, error)
	GetStats(ctx context.Context) (*database.AuditStats, error)
}

// Handler contains the HTTP handlers for the shared directory.
type Handler struct {
	uploads  *service.UploadService
	deletes  *service.DeleteService
	store    *storage.FileSystemStore
	renderer render.Renderer
	db       *database.DB // nil when the audit log is disabled
	audit    AuditLog     // nil when the audit log is disabled
}

// NewHandler creates a new handler with the given service dependencies.
func NewHandler(
	uploads *service.UploadService,
	deletes *service.DeleteService,
	store *storage.FileSystemStore,
	renderer render.Renderer,
	db *database.DB,
	audit AuditLog,
) *Handler {
	return &Handler{
		uploads:  uploads,
		deletes:  deletes,
		store:    store,
		renderer: renderer,
		db:       db,
		audit:    audit,
	}
}

// HandleUpload handles POST / and any other POST path except /delete.
// Files always land in the shared root. Browser form posts always get redirected back to the listing; failures
// are only logged.
func (h *Handler) HandleUpload(c echo.Context) error {
	req := c.Request()

	result, err := h.uploads.Upload(req.Context(), req.Header.Get(echo.HeaderContentType), req.ContentLength, req.Body)
	if err != nil {
		slog.Warn("upload failed", "ip", c.RealIP(), "error", err)
	} else {
		slog.Info("upload complete", "ip", c.RealIP(), "files", result.Names(), "skipped", len(result.Failed))
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

// HandleDownload handles GET and HEAD /download?file=<name>.
func (h *Handler) HandleDownload(c echo.Context) error {
	name := c.QueryParam("file")
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing file parameter"})
	}

	p, info, err := h.store.Lookup(name)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrProtected) || errors.Is(err, service.ErrInvalidName) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "File not found"})
		}
		return mapServiceError(c, err)
	}

	f, err := os.Open(p)
	if err != nil {
		slog.Error("failed to open file for download", "path", p, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to read file"})
	}
	defer f.Close()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, contentTypeForName(info.Name()))
	res.Header().Set(echo.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{
		"filename": info.Name(),
	}))
	http.ServeContent(res, c.Request(), info.Name(), info.ModTime(), f)
	return nil
}

type deleteRequest struct {
	File   string `json:"file"`
	Action string `json:"action"`
	Token  string `json:"token,omitempty"`
}

// HandleDelete handles POST /delete.
// The request action blocks until the server operator answers.
func (h *Handler) HandleDelete(c echo.Context) error {
	var req deleteRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid JSON"})
	}

	ctx := c.Request().Context()
	switch req.Action {
	case "request":
		token, err := h.deletes.Request(ctx, req.File, c.RealIP())
		if err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "File deleted", "token": token})

	case "confirm":
		if err := h.deletes.Confirm(ctx, req.File, req.Token); err != nil {
			return mapServiceError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "File deleted"})

	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid action"})
	}
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(c echo.Context) error {
	dbStatus := h.db.Status(c.Request().Context())
	status := "healthy"
	if dbStatus == "unavailable" {
		status = "degraded"
	}

	body := echo.Map{
		"status":          status,
		"database":        dbStatus,
		"pending_deletes": h.deletes.Pending(),
	}
	if h.audit != nil && dbStatus != "unavailable" {
		stats, err := h.audit.GetStats(c.Request().Context())
		if err != nil {
			slog.Warn("failed to read audit stats", "error", err)
		} else {
			body["audit"] = stats
		}
	}
	return c.JSON(http.StatusOK, body)
}

// HandleAudit handles GET /audit?token=<token>.
func (h *Handler) HandleAudit(c echo.Context) error {
	if h.audit == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Audit log disabled"})
	}
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing token parameter"})
	}

	entries, err := h.audit.ListByToken(c.Request().Context(), token)
	if err != nil {
		slog.Error("failed to read audit log", "token", token, "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to read audit log"})
	}
	if len(entries) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No audit entries for token", "token": token})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token, "entries": entries})
}

// HandleBrowse serves the shared tree: directory listings and static files.
func (h *Handler) HandleBrowse(c echo.Context) error {
	urlPath := c.Request().URL.Path
	if urlPath == "" {
		urlPath = "/"
	}

	p, info, err := h.store.Locate(urlPath)
	if err != nil {
		return c.String(http.StatusNotFound, "File not found")
	}

	if info.IsDir() {
		if !strings.HasSuffix(urlPath, "/") {
			return c.Redirect(http.StatusMovedPermanently, urlPath+"/")
		}
		for _, index := range []string{"index.html", "index.htm"} {
			ip := filepath.Join(p, index)
			if fi, err := os.Stat(ip); err == nil && fi.Mode().IsRegular() {
				return serveFile(c, ip, fi)
			}
		}
		return h.renderListing(c, urlPath, p)
	}

	return serveFile(c, p, info)
}

func (h *Handler) renderListing(c echo.Context, urlPath, dir string) error {
	entries, err := h.store.List(dir)
	if err != nil {
		slog.Error("failed to list directory", "path", dir, "error", err)
		return c.String(http.StatusNotFound, "No permission to list directory")
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, render.NewListing(urlPath, entries)); err != nil {
		slog.Error("failed to render listing", "path", urlPath, "error", err)
		return c.String(http.StatusInternalServerError, "Failed to render listing")
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func serveFile(c echo.Context, p string, info os.FileInfo) error {
	f, err := os.Open(p)
	if err != nil {
		return c.String(http.StatusNotFound, "File not found")
	}
	defer f.Close()

	c.Response().Header().Set(echo.HeaderContentType, contentTypeForName(info.Name()))
	http.ServeContent(c.Response(), c.Request(), info.Name(), info.ModTime(), f)
	return nil
}

// mapServiceError translates service-layer errors into JSON error responses.
// Errors that carry a delete token report it alongside the message.
func mapServiceError(c echo.Context, err error) error {
	status, msg := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, service.ErrInvalidName):
		status, msg = http.StatusBadRequest, "Invalid filename"
	case errors.Is(err, service.ErrMalformedUpload),
		errors.Is(err, service.ErrMissingBoundary),
		errors.Is(err, service.ErrNotMultipart):
		status, msg = http.StatusBadRequest, "Invalid multipart upload"
	case errors.Is(err, service.ErrProtected):
		status, msg = http.StatusForbidden, "File is protected"
	case errors.Is(err, service.ErrDenied):
		status, msg = http.StatusForbidden, "Delete request denied by admin"
	case errors.Is(err, service.ErrNotFound):
		status, msg = http.StatusNotFound, "File not found"
	case errors.Is(err, service.ErrInvalidToken):
		status, msg = http.StatusNotFound, "Invalid or expired token"
	case errors.Is(err, service.ErrFileMismatch):
		status, msg = http.StatusConflict, "File mismatch"
	case errors.Is(err, service.ErrUploadTooLarge):
		status, msg = http.StatusRequestEntityTooLarge, "Upload exceeds maximum allowed size"
	case errors.Is(err, service.ErrApprovalInterrupted):
		msg = "Server interrupted"
	case errors.Is(err, service.ErrDeleteFailed):
		msg = "Failed to delete file"
	case errors.Is(err, service.ErrWriteFailed):
		msg = "Can't create file"
	default:
		slog.Error("unhandled service error", "error", err)
	}

	body := echo.Map{"error": msg}
	var te *service.TokenError
	if errors.As(err, &te) {
		body["token"] = te.Token
	}
	return c.JSON(status, body)
}
