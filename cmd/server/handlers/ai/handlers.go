package ai

import (
	"context"
	"errors"

	"inkwell/cmd/server/handlers/handlerutil"
	"inkwell/cmd/server/handlers/httperr"
	"inkwell/internal/logger"
	"inkwell/internal/services/ai"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Service defines the interface for the AI text service
type Service interface {
	Summarize(ctx context.Context, content string) (string, error)
	FixGrammar(ctx context.Context, content string) (string, error)
	TranscribeDrawing(ctx context.Context, input string) (string, error)
}

// TransformRequest carries the text (or data-URL image) to transform
type TransformRequest struct {
	Content string `json:"content" validate:"required" example:"the quick brown fox jump over the lazy dog"`
}

// TransformResponse carries the transformed text
type TransformResponse struct {
	Result string `json:"result" example:"The quick brown fox jumps over the lazy dog."`
}

// Handlers contains the AI HTTP handlers
type Handlers struct {
	service   Service
	validator *validator.Validate
}

// NewHandlers creates new AI handlers
func NewHandlers(service Service, validator *validator.Validate) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
	}
}

// Summarize condenses note text
// @Summary Summarize text
// @Tags ai
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body TransformRequest true "Text to summarize"
// @Success 200 {object} TransformResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /ai/summarize [post]
func (h *Handlers) Summarize(c *fiber.Ctx) error {
	return h.transform(c, "Summarize", h.service.Summarize)
}

// FixGrammar corrects the grammar of note text
// @Summary Fix grammar
// @Tags ai
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body TransformRequest true "Text to correct"
// @Success 200 {object} TransformResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /ai/fix-grammar [post]
func (h *Handlers) FixGrammar(c *fiber.Ctx) error {
	return h.transform(c, "FixGrammar", h.service.FixGrammar)
}

// Transcribe turns a drawing (data-URL image) or raw scribble text into clean text
// @Summary Transcribe a drawing
// @Tags ai
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body TransformRequest true "Data-URL image or raw text"
// @Success 200 {object} TransformResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 502 {object} httperr.E
// @Router /ai/transcribe [post]
func (h *Handlers) Transcribe(c *fiber.Ctx) error {
	return h.transform(c, "Transcribe", h.service.TranscribeDrawing)
}

func (h *Handlers) transform(c *fiber.Ctx, handlerName string, op func(context.Context, string) (string, error)) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req TransformRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, handlerName); err != nil {
		return err
	}

	result, err := op(c.Context(), req.Content)
	if err != nil {
		var upstream *ai.UpstreamError
		if errors.As(err, &upstream) {
			logger.L().Warn("upstream AI service failed", "handler", handlerName, "userID", userID.Hex(),
				"service", upstream.Service, "status", upstream.Status)
			return httperr.Fail(httperr.BadGateway(upstream.Error()))
		}
		logger.L().Error("AI transform failed", "handler", handlerName, "userID", userID.Hex(), "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(TransformResponse{Result: result})
}
