package middleware

import (
	"bytes"
	"io"

	"receipt-ledger/internal/logger"
	"receipt-ledger/internal/models"
	"receipt-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// maxAuditBody is the largest request body copied into the audit action.
const maxAuditBody = 2000

// AuditMiddleware 记录登录用户的操作。path 和 action 加密存储，不存明文；
// multipart 上传内容不记录。
func AuditMiddleware(db *gorm.DB, encryptKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.Next()
			return
		}

		var bodyBytes []byte
		if c.Request.Body != nil && c.ContentType() == gin.MIMEJSON {
			bodyBytes, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody+1))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(bodyBytes), c.Request.Body))
		}

		// 执行请求
		c.Next()

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) <= maxAuditBody {
			action += " " + string(bodyBytes)
		}

		log := logger.FromContext(c.Request.Context())
		encPath, err := util.EncryptField(encryptKey, path)
		if err != nil {
			log.Error().Err(err).Msg("encrypt audit path")
			return
		}
		encAction, err := util.EncryptField(encryptKey, action)
		if err != nil {
			log.Error().Err(err).Msg("encrypt audit action")
			return
		}

		userID := user.ID
		entry := models.AuditLog{
			UserID:    &userID,
			PathEnc:   encPath,
			Method:    c.Request.Method,
			ActionEnc: encAction,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := db.WithContext(c.Request.Context()).Create(&entry).Error; err != nil {
			log.Warn().Err(err).Msg("write audit log")
		}
	}
}
