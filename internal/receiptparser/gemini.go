package receiptparser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const receiptPrompt = "You are a receipt parser.\n\n" +
	"Task:\n" +
	"- Read the attached photo of a shop receipt.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
	"- Output a single JSON object with these fields:\n" +
	"  - \"date\": string, \"YYYY-MM-DD\"\n" +
	"  - \"receipt_number\": string\n" +
	"  - \"total\": number\n" +
	"  - \"store\": string\n" +
	"  - \"currency_code\": string, ISO 4217 (e.g. \"USD\")\n" +
	"  - \"expenses\": array of objects with \"spent_on\" (string), \"amount\" (number, never negative),\n" +
	"    \"transaction_date\" (string, \"YYYY-MM-DD HH:MM:SS\") and \"remarks\" (string or null)\n\n" +
	"Rules:\n" +
	"- One expense per purchased line item.\n" +
	"- If a field cannot be read, set it to null.\n" +
	"Return ONLY valid raw JSON. Do NOT wrap the response in code fences.\n" +
	"Output must begin with \"{\" and end with \"}\".\n"

// GeminiParser asks a Gemini model to extract the draft from the image.
type GeminiParser struct {
	Model   string
	Timeout time.Duration

	// generate returns the model's raw text reply.
	generate func(ctx context.Context, model string, contents []*genai.Content) (string, error)
}

// NewGeminiParser creates the GenAI client. An empty apiKey falls back to the
// GOOGLE_API_KEY / GEMINI_API_KEY environment variables.
func NewGeminiParser(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiParser, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiParser{
		Model:   model,
		Timeout: timeout,
		generate: func(ctx context.Context, model string, contents []*genai.Content) (string, error) {
			resp, err := client.Models.GenerateContent(ctx, model, contents, nil)
			if err != nil {
				return "", err
			}
			return resp.Text(), nil
		},
	}, nil
}

func (p *GeminiParser) Parse(ctx context.Context, image []byte, fileName string) (Draft, error) {
	mime, err := DetectImage(image)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, p.Timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: receiptPrompt},
				{
					InlineData: &genai.Blob{
						MIMEType: mime,
						Data:     image,
					},
				},
			},
		},
	}

	rawText, err := p.generate(ctx, p.Model, contents)
	if err != nil {
		return nil, fmt.Errorf("%w: generate content: %w", ErrUpstream, err)
	}
	if rawText == "" {
		return nil, fmt.Errorf("%w: empty response from model", ErrUpstream)
	}

	var draft Draft
	if err := json.Unmarshal([]byte(cleanModelJSON(rawText)), &draft); err != nil {
		return nil, fmt.Errorf("%w: unmarshal model output: %w", ErrUpstream, err)
	}
	if fileName != "" {
		draft["file_name"] = fileName
	}
	return draft, nil
}

// cleanModelJSON strips Markdown fences and any chatter around the JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		// drop the ``` or ```json line
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
