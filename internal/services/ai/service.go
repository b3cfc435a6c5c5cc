package ai

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// Completer sends a prompt to a hosted chat-completion endpoint and returns
// the model's reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Recognizer extracts raw text from an image.
type Recognizer interface {
	Recognize(ctx context.Context, image string, lang string) (string, error)
}

// Service offers stateless text transforms on note content. All operations
// delegate to the completion endpoint; TranscribeDrawing additionally runs
// OCR first when given image data. Failures propagate typed; no retries.
type Service struct {
	completer Completer
	ocr       Recognizer
	ocrLang   string
	log       *slog.Logger
}

// NewService creates a new AI text service
func NewService(completer Completer, ocr Recognizer, ocrLang string, log *slog.Logger) *Service {
	return &Service{
		completer: completer,
		ocr:       ocr,
		ocrLang:   ocrLang,
		log:       log,
	}
}

const (
	summarizePrompt = "Summarize the following text:\n"
	grammarPrompt   = "Fix the grammar in the following text. Only correct what is given, do not converse, be concise:\n"
	scribblePrompt  = "The following text was extracted from a handwritten drawing and may contain recognition errors. Respond only with the corrected text:\n\n"

	// NoReadableText is returned by TranscribeDrawing when OCR finds nothing.
	NoReadableText = "Could not extract any readable text."
)

// ocrNoise matches everything OCR output should not carry downstream.
var ocrNoise = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// Summarize asks the model for a summary of content.
func (s *Service) Summarize(ctx context.Context, content string) (string, error) {
	out, err := s.completer.Complete(ctx, summarizePrompt+content)
	if err != nil {
		s.log.Error("summarize failed", "error", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// FixGrammar asks the model to correct content without conversing.
func (s *Service) FixGrammar(ctx context.Context, content string) (string, error) {
	out, err := s.completer.Complete(ctx, grammarPrompt+content)
	if err != nil {
		s.log.Error("fix grammar failed", "error", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// TranscribeDrawing turns a drawing into clean text. Image input (a data
// URI) is OCRed first and the raw text is stripped to alphanumerics and
// single-spaced whitespace before the correction pass; plain text input
// skips OCR and goes straight to correction.
func (s *Service) TranscribeDrawing(ctx context.Context, input string) (string, error) {
	extracted := input

	if IsImageInput(input) {
		raw, err := s.ocr.Recognize(ctx, input, s.ocrLang)
		if err != nil {
			s.log.Error("ocr failed", "error", err)
			return "", err
		}
		extracted = CleanOCRText(raw)
	}

	if strings.TrimSpace(extracted) == "" {
		return NoReadableText, nil
	}

	out, err := s.completer.Complete(ctx, scribblePrompt+extracted)
	if err != nil {
		s.log.Error("transcribe correction failed", "error", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// IsImageInput reports whether input is image data rather than plain text.
func IsImageInput(input string) bool {
	return strings.HasPrefix(input, "data:image/")
}

// CleanOCRText strips characters outside [A-Za-z0-9\s] and collapses
// whitespace runs to single spaces.
func CleanOCRText(raw string) string {
	cleaned := ocrNoise.ReplaceAllString(raw, "")
	return strings.Join(strings.Fields(cleaned), " ")
}
