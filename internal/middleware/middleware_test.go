package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"receipt-ledger/internal/database/dbtest"
	"receipt-ledger/internal/logger"
	"receipt-ledger/internal/models"
	"receipt-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{Username: "alice", PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func protectedEngine(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.Use(AuthMiddleware(testSecret, db), AuditMiddleware(db, "audit-key"))
	r.GET("/whoami", func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": u.ID})
	})
	r.POST("/echo", func(c *gin.Context) {
		var body map[string]any
		_ = c.ShouldBindJSON(&body)
		c.JSON(http.StatusCreated, body)
	})
	return r
}

func TestAuthMiddleware_TokenSources(t *testing.T) {
	db := dbtest.New(t)
	user := seedUser(t, db)
	tok, err := util.GenerateToken(testSecret, "", user.ID, time.Hour)
	require.NoError(t, err)
	r := protectedEngine(db)

	reqs := map[string]*http.Request{
		"header": httptest.NewRequest(http.MethodGet, "/whoami", nil),
		"query":  httptest.NewRequest(http.MethodGet, "/whoami?token="+tok, nil),
		"cookie": httptest.NewRequest(http.MethodGet, "/whoami", nil),
	}
	reqs["header"].Header.Set("Authorization", "Bearer "+tok)
	reqs["cookie"].AddCookie(&http.Cookie{Name: TokenCookie, Value: tok})

	for name, req := range reqs {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, name)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	db := dbtest.New(t)
	r := protectedEngine(db)

	wrongKey, err := util.GenerateToken("other-secret", "", 1, time.Hour)
	require.NoError(t, err)
	ghost, err := util.GenerateToken(testSecret, "", 999, time.Hour)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":      "",
		"garbage":      "Bearer not-a-jwt",
		"wrong secret": "Bearer " + wrongKey,
		"unknown user": "Bearer " + ghost,
	} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.NotEmpty(t, body["error"], name)
	}
}

func TestAuditMiddleware_EncryptsPathAndAction(t *testing.T) {
	db := dbtest.New(t)
	user := seedUser(t, db)
	tok, err := util.GenerateToken(testSecret, "", user.ID, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"store":"SuperMart"}`))
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	protectedEngine(db).ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"store":"SuperMart"}`, w.Body.String(), "handler still sees the body")

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	entry := logs[0]
	assert.Equal(t, user.ID, *entry.UserID)
	assert.Equal(t, http.MethodPost, entry.Method)
	assert.Equal(t, http.StatusCreated, entry.Status)
	assert.NotContains(t, entry.PathEnc, "/echo")
	assert.Equal(t, "/echo", util.DecryptField("audit-key", entry.PathEnc))
	assert.Equal(t, `POST /echo {"store":"SuperMart"}`, util.DecryptField("audit-key", entry.ActionEnc))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(logger.NewWithWriter(&buf)), Recovery())
	r.GET("/ok", func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())
		log.Info().Msg("inside handler")
		c.Status(http.StatusNoContent)
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "req-123", entry["request_id"])
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
