package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	service "github.com/okian/abalone/internal/app"
	"github.com/okian/abalone/internal/domain/types"
	"github.com/okian/abalone/pkg/logger"
)

// Parts above this size spill to temporary files.
const multipartMemory = 1 << 20

// Submitter scores and records uploads.
type Submitter interface {
	Submit(ctx context.Context, req service.SubmitRequest) (types.UploadResult, error)
}

// uploadForm mirrors the multipart fields of POST /api/upload.
type uploadForm struct {
	TeamName    string `schema:"teamName" validate:"required"`
	TeamMembers string `schema:"teamMembers" validate:"required"`
	FileName    string `schema:"-" validate:"required"`
}

// UploadHandler handles submission uploads.
type UploadHandler struct {
	deps     Submitter
	maxBytes int64
	decoder  *schema.Decoder
	validate *validator.Validate
	logger   logger.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(deps Submitter, maxBytes int64, l logger.Logger) *UploadHandler {
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	return &UploadHandler{
		deps:     deps,
		maxBytes: maxBytes,
		decoder:  decoder,
		validate: validator.New(),
		logger:   l,
	}
}

// HandleUpload handles POST /api/upload.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	res, err := h.upload(w, r)
	if err != nil {
		status, msg := classify(err)
		fields := []logger.Field{
			logger.Error(err),
			logger.Int("status", status),
			logger.String("request_id", middleware.GetReqID(r.Context())),
		}
		if status >= http.StatusInternalServerError {
			h.logger.Error(r.Context(), "upload failed", fields...)
		} else {
			h.logger.Info(r.Context(), "upload rejected", fields...)
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *UploadHandler) upload(w http.ResponseWriter, r *http.Request) (types.UploadResult, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return types.UploadResult{}, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var form uploadForm
	if err := h.decoder.Decode(&form, r.MultipartForm.Value); err != nil {
		return types.UploadResult{}, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return types.UploadResult{}, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	default:
		defer file.Close()
		form.FileName = header.Filename
	}

	if err := h.validate.Struct(form); err != nil {
		return types.UploadResult{}, fmt.Errorf("%w: %w", service.ErrMissingFields, err)
	}

	return h.deps.Submit(r.Context(), service.SubmitRequest{
		TeamName:    form.TeamName,
		TeamMembers: form.TeamMembers,
		FileName:    form.FileName,
		File:        file,
	})
}
