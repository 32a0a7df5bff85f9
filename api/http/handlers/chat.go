package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/docqa/api/http/presenter"
	"github.com/artem13815/docqa/pkg/docqa"
	"github.com/artem13815/docqa/pkg/logger"
	"github.com/artem13815/docqa/pkg/security/jwt"
)

const pipelineFailureDetail = "could not process the document"

var errFileTooLarge = errors.New("file too large")

type ChatHandler struct {
	svc docqa.UseCase
	log *slog.Logger
	// Limit uploaded file size read into memory (bytes)
	maxBytes int64
}

func NewChatHandler(svc docqa.UseCase, log *slog.Logger, maxBytes int64) *ChatHandler {
	if maxBytes <= 0 {
		maxBytes = 15 << 20 // 15MB
	}
	return &ChatHandler{svc: svc, log: log, maxBytes: maxBytes}
}

// Chat answers a question about an uploaded document.
// @Summary Ask a question about a document
// @Description Accepts a PDF, DOCX, TXT or MD file and a question, extracts the text and asks the language model.
// @Tags    chat
// @Accept  multipart/form-data
// @Produce json
// @Param   file     formData file   true "Document (pdf, docx, txt, md)"
// @Param   question formData string true "Question about the document"
// @Security BearerAuth
// @Success 200 {object} presenter.ChatResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /chat/ [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return presenter.Error(c, http.StatusBadRequest, "file is required")
	}
	question := c.FormValue("question")
	if strings.TrimSpace(question) == "" {
		return presenter.Error(c, http.StatusBadRequest, "question is required")
	}
	file, err := fh.Open()
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := readAtMost(file, h.maxBytes)
	if err != nil {
		if errors.Is(err, errFileTooLarge) {
			return presenter.Error(c, http.StatusBadRequest, err.Error())
		}
		return presenter.Error(c, http.StatusBadRequest, "failed to read uploaded file")
	}

	ctx := c.UserContext()
	user, _ := jwt.CurrentUser(c)
	answer, err := h.svc.Answer(ctx, docqa.Request{
		Filename: fh.Filename,
		Data:     data,
		Question: question,
	})
	if err != nil {
		if errors.Is(err, docqa.ErrEmptyQuestion) {
			return presenter.Error(c, http.StatusBadRequest, "question is required")
		}
		attrs := []any{
			logger.Err(err),
			slog.String("request_id", presenter.RequestID(c)),
			slog.String("user", user.Email),
			slog.Int("size_b", len(data)),
		}
		var pe *docqa.PipelineError
		if errors.As(err, &pe) {
			attrs = append(attrs, slog.String("stage", pe.Stage))
		}
		h.log.ErrorContext(ctx, "document question failed", attrs...)
		return presenter.Error(c, http.StatusInternalServerError, pipelineFailureDetail)
	}

	h.log.InfoContext(ctx, "document question answered",
		slog.String("request_id", presenter.RequestID(c)),
		slog.String("user", user.Email),
		slog.String("model", answer.Model),
		slog.Int("chars", answer.Chars),
	)
	return presenter.JSON(c, http.StatusOK, presenter.ChatResponse{Result: answer.Text})
}

func readAtMost(f multipart.File, max int64) ([]byte, error) {
	limited := io.LimitReader(f, max+1)
	b, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(b)) > max {
		return nil, fmt.Errorf("%w: limit is %d bytes", errFileTooLarge, max)
	}
	return b, nil
}
