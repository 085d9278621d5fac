// Package handler provides the assistant's HTTP handlers.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/kart-io/rafiq/internal/rafiq/biz"
	"github.com/kart-io/rafiq/internal/rafiq/tagger"
	"github.com/kart-io/rafiq/internal/rafiq/translate"
)

// queryTimeout bounds one query across translation, retrieval and
// generation.
const queryTimeout = 60 * time.Second

// allowedUploadExts are the document formats accepted for ingestion.
var allowedUploadExts = map[string]struct{}{
	".pdf": {}, ".png": {}, ".jpg": {}, ".jpeg": {}, ".tiff": {},
	".bmp": {}, ".txt": {}, ".md": {},
}

// AssistantHandler handles assistant HTTP requests.
type AssistantHandler struct {
	service    biz.Service
	uploadsDir string
}

// NewAssistantHandler creates an AssistantHandler. Uploaded files are
// stored under uploadsDir before ingestion.
func NewAssistantHandler(service biz.Service, uploadsDir string) *AssistantHandler {
	return &AssistantHandler{
		service:    service,
		uploadsDir: uploadsDir,
	}
}

// SuccessResponse is the standard success envelope.
type SuccessResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// IngestPathRequest ingests a file already on the server's filesystem.
type IngestPathRequest struct {
	Path string `json:"path" binding:"required"`
}

// Ingest accepts a document for background indexing. Either a multipart
// upload under the "file" field, or a JSON body naming a local path.
// Responds 202 with the document identifier; indexing completes
// asynchronously and the full record, summaries included, is available at
// GET /v1/documents/:id.
func (h *AssistantHandler) Ingest(c *gin.Context) {
	path, err := h.resolveDocument(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}

	docID, err := h.service.Ingest(path)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Code: 503, Message: "ingestion queue full: " + err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, SuccessResponse{
		Code:    0,
		Message: "document accepted for indexing",
		Data: gin.H{
			"document_id": docID,
			"path":        filepath.Base(path),
		},
	})
}

// GetDocument returns the ingestion record for a document identifier,
// including status, department tags and the bilingual summaries.
func (h *AssistantHandler) GetDocument(c *gin.Context) {
	record, ok := h.service.Document(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Code: 404, Message: "unknown document: " + c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: record})
}

// resolveDocument extracts the document path from the request, saving
// multipart uploads to the uploads directory.
func (h *AssistantHandler) resolveDocument(c *gin.Context) (string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			return "", fmt.Errorf("missing file field: %w", err)
		}
		name := filepath.Base(file.Filename)
		if _, ok := allowedUploadExts[strings.ToLower(filepath.Ext(name))]; !ok {
			return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(name))
		}
		dest := filepath.Join(h.uploadsDir, name)
		if err := c.SaveUploadedFile(file, dest); err != nil {
			return "", fmt.Errorf("failed to store upload: %w", err)
		}
		logger.Infow("upload stored", "file", name)
		return dest, nil
	}

	var req IngestPathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", err
	}
	if _, ok := allowedUploadExts[strings.ToLower(filepath.Ext(req.Path))]; !ok {
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(req.Path))
	}
	return req.Path, nil
}

// QueryRequest is a question with an optional department filter and an
// optional explicit response language. An empty language means detect from
// the question text.
type QueryRequest struct {
	Question    string   `json:"question" binding:"required"`
	Language    string   `json:"language,omitempty"`
	Departments []string `json:"departments,omitempty"`
}

// Query answers a question through the response chain.
func (h *AssistantHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: err.Error()})
		return
	}
	if req.Language != "" && req.Language != translate.LangEnglish && req.Language != translate.LangArabic {
		c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: "unsupported language: " + req.Language})
		return
	}
	for _, dept := range req.Departments {
		if !validDepartment(dept) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Code: 400, Message: "unknown department: " + dept})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	answer, err := h.service.Query(ctx, req.Question, req.Language, req.Departments)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			c.JSON(http.StatusRequestTimeout, ErrorResponse{
				Code:    408,
				Message: "query timeout: the request took too long to process, try again or simplify the question",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Code: 500, Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Code: 0, Message: "success", Data: answer})
}

// Status reports engine state and service counters.
func (h *AssistantHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{
		Code:    0,
		Message: "success",
		Data:    h.service.Status(c.Request.Context()),
	})
}

func validDepartment(dept string) bool {
	if dept == tagger.GeneralDepartment {
		return true
	}
	for _, known := range tagger.Departments() {
		if dept == known {
			return true
		}
	}
	return false
}
