package files

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/cyphervault/modules/auth"
	"github.com/dmitrymomot/cyphervault/pkg/blob"
	"github.com/dmitrymomot/cyphervault/pkg/envelope"
	"github.com/dmitrymomot/cyphervault/pkg/logger"
	"github.com/dmitrymomot/cyphervault/pkg/vault"
)

// Router mounts the file vault endpoints. The caller wraps it with the auth
// middleware; every handler expects an authenticated user in the context.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/", s.handleUpload)
	r.Get("/", s.handleList)
	r.Get("/{fileID}", s.handleDownload)
	r.Delete("/{fileID}", s.handleDelete)

	return r
}

type fileResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type uploadItemResponse struct {
	Filename string `json:"filename"`
	FileID   string `json:"file_id,omitempty"`
	Size     int64  `json:"size"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

func (s *Service) handleUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("authentication required"))
		return
	}

	// Only the multipart headers are parsed up front; file parts above the
	// memory threshold are spooled to disk and streamed from there.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("malformed multipart request"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("no files provided"))
		return
	}

	items := make([]UploadItem, 0, len(headers))
	openFiles := make([]io.Closer, 0, len(headers))
	defer func() {
		for _, f := range openFiles {
			f.Close()
		}
	}()
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("failed to read uploaded file"))
			return
		}
		openFiles = append(openFiles, f)
		items = append(items, UploadItem{Filename: h.Filename, Size: h.Size, Content: f})
	}

	results, err := s.Upload(r.Context(), user.ID, items)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]uploadItemResponse, len(results))
	for i, res := range results {
		out[i] = uploadItemResponse{
			Filename: res.Filename,
			Size:     res.Size,
			Success:  res.Err == nil,
		}
		if res.Err == nil {
			out[i].FileID = res.FileID.String()
		} else {
			out[i].Error = res.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("authentication required"))
		return
	}

	list, err := s.List(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]fileResponse, len(list))
	for i, f := range list {
		out[i] = fileResponse{
			ID:        f.ID.String(),
			Filename:  f.Filename,
			Size:      f.Size,
			CreatedAt: f.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": out})
}

func (s *Service) handleDownload(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("authentication required"))
		return
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "fileID"))
	if err != nil {
		writeError(w, ErrFileNotFound)
		return
	}

	file, plaintext, err := s.Download(r.Context(), user.ID, fileID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer plaintext.Close()

	w.Header().Set("Content-Type", contentTypeFor(file.Filename))
	w.Header().Set("Content-Disposition", contentDisposition(file.Filename))

	if _, err := io.Copy(w, plaintext); err != nil {
		// Headers are already sent; all we can do is log and cut the stream.
		s.log.Error("download stream aborted",
			logger.UserID(user.ID.String()),
			logger.FileID(fileID.String()),
			logger.Error(err),
			logger.Component("files"),
		)
	}
}

func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody("authentication required"))
		return
	}

	fileID, err := uuid.Parse(chi.URLParam(r, "fileID"))
	if err != nil {
		writeError(w, ErrFileNotFound)
		return
	}

	if err := s.Delete(r.Context(), user.ID, fileID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "file deleted"})
}

// contentDisposition builds an attachment header with the RFC 5987 encoded
// filename so non-ASCII names survive the round trip.
func contentDisposition(filename string) string {
	fallback := url.PathEscape(filename)
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename}) +
		"; filename*=UTF-8''" + fallback
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// writeError maps vault errors onto HTTP statuses. Key custody problems are
// upstream failures, not client errors, and map to 502.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrFileNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, ErrTooManyFiles),
		errors.Is(err, ErrEmptyFilename),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, ErrTotalSizeExceeded):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, vault.ErrKeyNotFound),
		errors.Is(err, vault.ErrUnavailable),
		errors.Is(err, blob.ErrUnavailable):
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
	case errors.Is(err, envelope.ErrDecryptionFailed):
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to decrypt file content"))
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody("internal server error"))
	}
}
