package receiptparser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// maxResponseBytes bounds how much of the upstream reply is read.
const maxResponseBytes = 1 << 20

// HTTPParser forwards the image to an external extraction API as a
// multipart "image" field and returns its JSON reply. No retries.
type HTTPParser struct {
	URL     string
	Timeout time.Duration
	Client  *http.Client
}

func NewHTTPParser(url string, timeout time.Duration) *HTTPParser {
	return &HTTPParser{URL: url, Timeout: timeout, Client: &http.Client{}}
}

func (p *HTTPParser) Parse(ctx context.Context, image []byte, fileName string) (Draft, error) {
	if _, err := DetectImage(image); err != nil {
		return nil, err
	}

	body, contentType, err := multipartImage(image, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: build request body: %w", ErrUpstream, err)
	}

	ctx, cancel := withTimeout(ctx, p.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON received: %w", ErrUpstream, err)
	}
	return draft, nil
}

func multipartImage(image []byte, fileName string) (*bytes.Buffer, string, error) {
	if fileName == "" {
		fileName = "receipt"
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
