package httpapi

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/docchat/conversation"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/ingestion"
)

// IngestedMessage is returned after a successful ingest or ingest-url call.
const IngestedMessage = "Documents loaded and ingested successfully"

type chatRequest struct {
	Messages []core.Message `json:"messages" binding:"required"`
}

type ingestURLRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.rejectRequest(c, err)
		return
	}

	// Cancelled when the handler returns so the producer stops on a broken connection.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events, err := s.asker.Ask(ctx, req.Messages)
	if err != nil {
		if isValidation(err) {
			s.rejectRequest(c, err)
			return
		}
		s.failRequest(c, err)
		return
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if err := conversation.WriteStream(c.Writer, events, c.Writer.Flush); err != nil {
		s.logger.Error("answer stream ended early", "error", err)
	}
}

func (s *Server) handleIngest(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		s.rejectRequest(c, err)
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		s.rejectRequest(c, ErrNoFiles)
		return
	}

	dir, err := os.MkdirTemp("", "docchat-upload-")
	if err != nil {
		s.failRequest(c, err)
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("failed to remove upload directory", "dir", dir, "error", err)
		}
	}()

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if name == "." || name == ".." || name == string(filepath.Separator) {
			s.rejectRequest(c, ErrInvalidFilename)
			return
		}
		path := filepath.Join(dir, name)
		if err := c.SaveUploadedFile(fh, path); err != nil {
			s.failRequest(c, err)
			return
		}
		paths = append(paths, path)
	}

	report, err := s.ingester.IngestFiles(c.Request.Context(), paths, &ingestion.IngestOptions{
		Namespace:       s.namespace,
		ContinueOnError: true,
		SkipManifest:    true,
	})
	if err != nil {
		s.failRequest(c, err)
		return
	}
	for _, f := range report.Failures {
		s.logger.Warn("uploaded file skipped", "file", filepath.Base(f.Path), "error", f.Err)
	}
	s.logger.Info("ingested upload",
		"files", len(paths), "documents", report.Documents, "chunks", report.Chunks)
	c.JSON(http.StatusOK, MessageResponse{Message: IngestedMessage})
}

func (s *Server) handleIngestURL(c *gin.Context) {
	var req ingestURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.rejectRequest(c, err)
		return
	}

	report, err := s.ingester.IngestURL(c.Request.Context(), req.URL, &ingestion.IngestOptions{
		Namespace: s.namespace,
	})
	if err != nil {
		s.failRequest(c, err)
		return
	}
	s.logger.Info("ingested url", "url", req.URL, "chunks", report.Chunks)
	c.JSON(http.StatusOK, MessageResponse{Message: IngestedMessage})
}

func (s *Server) handleDelete(c *gin.Context) {
	msg, err := s.eraser.Erase(c.Request.Context(), s.namespace)
	if err != nil {
		s.failRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: msg})
}
