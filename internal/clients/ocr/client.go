package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/services/ai"

	"github.com/go-resty/resty/v2"
)

// Client talks to a hosted OCR service that accepts an image data URI and a
// language code and answers with the recognized raw text.
type Client struct {
	rest *resty.Client
}

// NewClient creates an OCR client for the given base URL.
func NewClient(baseURL string) *Client {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(45 * time.Second)

	return &Client{rest: rest}
}

type recognizeRequest struct {
	Image string `json:"image"`
	Lang  string `json:"lang"`
}

type recognizeResponse struct {
	Text string `json:"text"`
}

// Recognize implements ai.Recognizer. Non-2xx responses surface as
// *ai.UpstreamError carrying the upstream status and body.
func (c *Client) Recognize(ctx context.Context, image, lang string) (string, error) {
	var out recognizeResponse

	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(recognizeRequest{Image: image, Lang: lang}).
		SetResult(&out).
		Post("/recognize")
	if err != nil {
		return "", fmt.Errorf("ocr request: %w", err)
	}

	if resp.IsError() {
		return "", &ai.UpstreamError{Service: "ocr", Status: resp.StatusCode(), Body: string(resp.Body())}
	}

	return out.Text, nil
}
