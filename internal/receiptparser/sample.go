package receiptparser

import (
	"context"
	"time"
)

// SampleParser returns a fixed draft dated yesterday. It still rejects
// uploads that are not images, so clients exercise the real error path.
type SampleParser struct {
	now func() time.Time
}

func NewSampleParser() *SampleParser {
	return &SampleParser{now: time.Now}
}

func (p *SampleParser) Parse(_ context.Context, image []byte, fileName string) (Draft, error) {
	if _, err := DetectImage(image); err != nil {
		return nil, err
	}

	yesterday := p.now().AddDate(0, 0, -1)
	date := yesterday.Format(time.DateOnly)
	at := yesterday.Format(time.DateTime)

	return Draft{
		"file_name":      fileName,
		"date":           date,
		"receipt_number": "REC-TEST-001",
		"total":          100.50,
		"store":          "Sample Store",
		"currency_id":    147,
		"expenses": []map[string]any{
			{
				"category_id":      7,
				"spent_on":         "Coffee",
				"amount":           5.25,
				"transaction_date": at,
				"remarks":          "Morning coffee",
			},
			{
				"category_id":      11,
				"spent_on":         "Sandwich",
				"amount":           8.75,
				"transaction_date": at,
				"remarks":          "Breakfast sandwich",
			},
		},
	}, nil
}
