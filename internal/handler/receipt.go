package handler

import (
	"io"
	"net/http"

	"receipt-ledger/internal/receiptparser"
	"receipt-ledger/internal/service"
	"receipt-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

// ReceiptHandler serves receipt CRUD and image parsing.
type ReceiptHandler struct {
	Receipts    *service.ReceiptService
	Parser      receiptparser.Parser
	Sample      receiptparser.Parser
	MaxUploadMB int64
}

func NewReceiptHandler(receipts *service.ReceiptService, parser receiptparser.Parser, maxUploadMB int64) *ReceiptHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &ReceiptHandler{
		Receipts:    receipts,
		Parser:      parser,
		Sample:      receiptparser.NewSampleParser(),
		MaxUploadMB: maxUploadMB,
	}
}

// ListReceipts GET /api/receipts
func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var q service.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	page, err := h.Receipts.List(c.Request.Context(), user.ID, q)
	if err != nil {
		respondError(c, "receipt", err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateReceipt POST /api/receipts
func (h *ReceiptHandler) CreateReceipt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var in service.ReceiptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	receipt, err := h.Receipts.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		respondError(c, "receipt", err)
		return
	}
	util.Created(c, receipt)
}

// GetReceipt GET /api/receipts/:id returns the receipt itself, not enveloped.
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "receipt")
	if !ok {
		return
	}
	receipt, err := h.Receipts.Get(c.Request.Context(), user.ID, id)
	if err != nil {
		respondError(c, "receipt", err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// UpdateReceipt PUT /api/receipts/:id
func (h *ReceiptHandler) UpdateReceipt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "receipt")
	if !ok {
		return
	}
	var in service.ReceiptFields
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	receipt, err := h.Receipts.Update(c.Request.Context(), user.ID, id, in)
	if err != nil {
		respondError(c, "receipt", err)
		return
	}
	util.Success(c, receipt)
}

// DeleteReceipt DELETE /api/receipts/:id
func (h *ReceiptHandler) DeleteReceipt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "receipt")
	if !ok {
		return
	}
	if err := h.Receipts.Delete(c.Request.Context(), user.ID, id); err != nil {
		respondError(c, "receipt", err)
		return
	}
	util.Success(c, "receipt_deleted")
}

// ParseReceipt POST /api/receipts/parse
func (h *ReceiptHandler) ParseReceipt(c *gin.Context) {
	h.parseWith(c, h.Parser)
}

// ParseSample POST /api/receipts/parse/sample
func (h *ReceiptHandler) ParseSample(c *gin.Context) {
	h.parseWith(c, h.Sample)
}

func (h *ReceiptHandler) parseWith(c *gin.Context, parser receiptparser.Parser) {
	if _, ok := currentUser(c); !ok {
		return
	}

	limit := h.MaxUploadMB << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+(1<<20))

	fileHeader, err := c.FormFile("image")
	if err != nil {
		util.ErrorWithDetails(c, http.StatusUnprocessableEntity, "Invalid image file.", map[string]string{
			"image": "an image file is required",
		})
		return
	}
	if fileHeader.Size > limit {
		util.ErrorWithDetails(c, http.StatusUnprocessableEntity, "Invalid image file.", map[string]string{
			"image": "file is too large",
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respondError(c, "receipt", err)
		return
	}
	defer f.Close()
	image, err := io.ReadAll(f)
	if err != nil {
		respondError(c, "receipt", err)
		return
	}

	draft, err := parser.Parse(c.Request.Context(), image, fileHeader.Filename)
	if err != nil {
		respondError(c, "receipt", err)
		return
	}
	util.Success(c, draft)
}
