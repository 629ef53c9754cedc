package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"receipt-ledger/internal/models"
	"receipt-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler 负责日志查询接口
type LogHandler struct {
	DB         *gorm.DB
	EncryptKey string
}

func NewLogHandler(db *gorm.DB, encryptKey string) *LogHandler {
	return &LogHandler{
		DB:         db,
		EncryptKey: encryptKey,
	}
}

type logResp struct {
	ID        uint      `json:"id"`
	Action    string    `json:"action"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

func pageParams(c *gin.Context, defaultSize int) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if size <= 0 || size > 100 {
		size = defaultSize
	}
	return page, size
}

func paginate[T any](items []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// loadDecrypted returns the user's audit entries in the start/end window
// (YYYY-MM-DD, end inclusive), newest first, with path and action decrypted.
func (h *LogHandler) loadDecrypted(c *gin.Context, userID uint) ([]logResp, bool) {
	base := h.DB.WithContext(c.Request.Context()).Model(&models.AuditLog{}).Where("user_id = ?", userID)

	if s := c.Query("start"); s != "" {
		start, err := time.Parse(time.DateOnly, s)
		if err != nil {
			util.ErrorWithDetails(c, http.StatusUnprocessableEntity, "validation failed", map[string]string{"start": "must be YYYY-MM-DD"})
			return nil, false
		}
		base = base.Where("created_at >= ?", start)
	}
	if s := c.Query("end"); s != "" {
		end, err := time.Parse(time.DateOnly, s)
		if err != nil {
			util.ErrorWithDetails(c, http.StatusUnprocessableEntity, "validation failed", map[string]string{"end": "must be YYYY-MM-DD"})
			return nil, false
		}
		base = base.Where("created_at < ?", end.AddDate(0, 0, 1))
	}

	var logs []models.AuditLog
	if err := base.Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		util.Error(c, http.StatusServiceUnavailable, "data unavailable, try again later")
		return nil, false
	}

	items := make([]logResp, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		items = append(items, logResp{
			ID:        l.ID,
			Action:    util.DecryptField(h.EncryptKey, l.ActionEnc),
			Path:      util.DecryptField(h.EncryptKey, l.PathEnc),
			Method:    l.Method,
			Status:    l.Status,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}
	return items, true
}

// ListLogs 列出当前用户的操作日志（分页 + 时间 + 关键字）GET /api/logs
func (h *LogHandler) ListLogs(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page, size := pageParams(c, 20)

	items, ok := h.loadDecrypted(c, user.ID)
	if !ok {
		return
	}

	// 关键字搜索：q（匹配 path / action），字段加密存储，只能解密后过滤
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		filtered := items[:0]
		for _, it := range items {
			if strings.Contains(it.Path, q) || strings.Contains(it.Action, q) {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	util.Success(c, gin.H{
		"items": paginate(items, page, size),
		"total": len(items),
		"page":  page,
		"size":  size,
	})
}

type receiptHistoryResp struct {
	ID            uint      `json:"id"`
	Operation     string    `json:"operation"`
	ReceiptID     string    `json:"receipt_id,omitempty"`
	ReceiptNumber string    `json:"receipt_number,omitempty"`
	Store         string    `json:"store,omitempty"`
	Total         string    `json:"total,omitempty"`
	Status        int       `json:"status"`
	IP            string    `json:"ip"`
	CreatedAt     time.Time `json:"created_at"`
}

// receiptOperation classifies an audited request as a receipt change.
func receiptOperation(method, path string) (op, receiptID string) {
	switch {
	case method == http.MethodPost && path == "/api/receipts":
		return "created", ""
	case strings.HasPrefix(path, "/api/receipts/"):
		id := strings.TrimPrefix(path, "/api/receipts/")
		if id == "" || strings.Contains(id, "/") {
			return "", ""
		}
		switch method {
		case http.MethodPut:
			return "updated", id
		case http.MethodDelete:
			return "deleted", id
		}
	}
	return "", ""
}

// ListReceiptHistory 查询小票相关的历史操作（仅增删改）GET /api/history
func (h *LogHandler) ListReceiptHistory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page, size := pageParams(c, 50)

	items, ok := h.loadDecrypted(c, user.ID)
	if !ok {
		return
	}

	history := make([]receiptHistoryResp, 0)
	for _, it := range items {
		op, receiptID := receiptOperation(it.Method, it.Path)
		if op == "" {
			continue
		}
		entry := receiptHistoryResp{
			ID:        it.ID,
			Operation: op,
			ReceiptID: receiptID,
			Status:    it.Status,
			IP:        it.IP,
			CreatedAt: it.CreatedAt,
		}

		// 解析 action 中的 JSON 数据："METHOD PATH {json body}"
		if start := strings.Index(it.Action, "{"); start >= 0 {
			var body struct {
				ReceiptNumber string          `json:"receipt_number"`
				Store         string          `json:"store"`
				Total         json.RawMessage `json:"total"`
			}
			if json.Unmarshal([]byte(it.Action[start:]), &body) == nil {
				entry.ReceiptNumber = body.ReceiptNumber
				entry.Store = body.Store
				entry.Total = strings.Trim(string(body.Total), `"`)
			}
		}
		history = append(history, entry)
	}

	util.Success(c, gin.H{
		"items": paginate(history, page, size),
		"total": len(history),
		"page":  page,
		"size":  size,
	})
}
