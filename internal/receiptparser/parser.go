// Package receiptparser turns an uploaded receipt image into a draft receipt.
//
// A draft is whatever the extraction backend produced. It is handed back to
// the client untouched and is not validated or persisted here; the client
// reviews it and submits it through the regular receipt create endpoint.
package receiptparser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"receipt-ledger/internal/config"
)

var (
	ErrInvalidImage = errors.New("invalid image file")
	ErrUpstream     = errors.New("receipt parser failed")
)

// Draft is an unvalidated receipt-shaped JSON object.
type Draft map[string]any

type Parser interface {
	Parse(ctx context.Context, image []byte, fileName string) (Draft, error)
}

var acceptedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/bmp":  true,
}

// DetectImage sniffs the content type of image and accepts JPEG, PNG and BMP.
func DetectImage(image []byte) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}
	mime := http.DetectContentType(image)
	if !acceptedTypes[mime] {
		return "", fmt.Errorf("%w: unsupported type %s", ErrInvalidImage, mime)
	}
	return mime, nil
}

// New builds the parser selected by cfg.Backend.
func New(ctx context.Context, cfg config.ReceiptParserConfig) (Parser, error) {
	switch cfg.Backend {
	case "http", "":
		return NewHTTPParser(cfg.URL, cfg.Timeout), nil
	case "gemini":
		return NewGeminiParser(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.Timeout)
	case "sample":
		return NewSampleParser(), nil
	default:
		return nil, fmt.Errorf("unknown receipt parser backend %q", cfg.Backend)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
