package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/solaradmin/internal/core"
	"github.com/JonMunkholm/solaradmin/internal/logging"
	"github.com/JonMunkholm/solaradmin/internal/web/middleware"
	"github.com/JonMunkholm/solaradmin/internal/web/templates"
)

// multipartOverhead is allowed on top of the file size for boundaries and
// the other form values htmx sends along with the file.
const multipartOverhead = 1 << 20

// handleUpload proxies one file to the API's upload endpoint for kind and
// answers with the form field, now holding the stored URL. Failures render
// in the same field so the rest of the form is untouched.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	scr, ok := core.ForUpload(kind)
	if !ok {
		s.notFound(w, r)
		return
	}
	h, ok := s.entities[scr.Key]
	if !ok {
		s.notFound(w, r)
		return
	}
	field, ok := h.UploadField(kind, r.URL.Query().Get("field"))
	if !ok {
		s.notFound(w, r)
		return
	}

	ctx := r.Context()
	csrf := middleware.CSRFToken(ctx)
	log := logging.FromContext(ctx).With("kind", kind)

	fail := func(err error) {
		if s.expireSession(w, r, err) {
			return
		}
		status := statusFor(err)
		log.Warn("upload failed", "status", status, "error", err)
		field.Error = core.MapError(err).Message
		s.render(w, r, status, templates.FormField(field, csrf))
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		fail(err)
		return
	}
	defer s.limiter.Release()

	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(fmt.Errorf("%w: request over %d bytes", core.ErrFileTooLarge, tooBig.Limit))
			return
		}
		fail(fmt.Errorf("parse upload: %v: %w", err, core.ErrNoFile))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(core.ErrNoFile)
		return
	}
	defer file.Close()

	policy := core.UploadPolicy{MaxSize: maxSize, AllowedTypes: s.cfg.Upload.AllowedTypes}
	checked, err := policy.Check(header.Filename, file)
	if err != nil {
		fail(err)
		return
	}

	url, err := s.uploads.Upload(ctx, "/admin/upload/"+kind, checked.Name, checked.Reader())
	if err != nil {
		fail(err)
		return
	}

	log.Info("file uploaded", "name", checked.Name, "mime", checked.MIME, "bytes", checked.Size)
	s.record(ctx, core.ActionUpload, scr.Key, "", fmt.Sprintf("Uploaded %s (%s)", checked.Name, checked.MIME))

	field.Value = url
	s.render(w, r, http.StatusOK, templates.FormField(field, csrf))
}
