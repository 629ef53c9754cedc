package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"receipt-ledger/internal/receiptparser"
	"receipt-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError_Mapping(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", service.InvalidField("total", "is required"), http.StatusUnprocessableEntity, "validation failed"},
		{"not found", fmt.Errorf("receipt 9: %w", service.ErrNotFound), http.StatusNotFound, "receipt not found"},
		{"not owner", fmt.Errorf("receipt 9: %w", service.ErrUnauthorized), http.StatusNotFound, "receipt not found"},
		{"store down", fmt.Errorf("load: %w: %w", service.ErrDataUnavailable, errors.New("locked")), http.StatusServiceUnavailable, "data unavailable, try again later"},
		{"no rate", fmt.Errorf("XAU: %w", service.ErrNoConversionRate), http.StatusUnprocessableEntity, "XAU: no conversion rate"},
		{"bad image", fmt.Errorf("%w: text/plain", receiptparser.ErrInvalidImage), http.StatusUnprocessableEntity, "Invalid image file."},
		{"upstream", fmt.Errorf("%w: status 502", receiptparser.ErrUpstream), http.StatusInternalServerError, "Error processing image: receipt parser failed: status 502"},
		{"unknown", errors.New("???"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, "receipt", tc.err)

			assert.Equal(t, tc.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.msg, body["error"])
		})
	}
}

func TestRespondError_ValidationDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	respondError(c, "receipt", service.InvalidField("expenses[0].amount", "must not be negative, got -1"))

	assert.JSONEq(t, `{
		"error": "validation failed",
		"details": {"expenses[0].amount": "must not be negative, got -1"}
	}`, w.Body.String())
}

func TestPathID(t *testing.T) {
	for raw, want := range map[string]bool{"12": true, "0": false, "-1": false, "abc": false} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}

		_, ok := pathID(c, "receipt")
		assert.Equal(t, want, ok, raw)
		if !want {
			assert.Equal(t, http.StatusNotFound, w.Code, raw)
		}
	}
}

func TestReceiptOperation(t *testing.T) {
	testCases := []struct {
		method, path string
		op, id       string
	}{
		{http.MethodPost, "/api/receipts", "created", ""},
		{http.MethodPut, "/api/receipts/7", "updated", "7"},
		{http.MethodDelete, "/api/receipts/7", "deleted", "7"},
		{http.MethodGet, "/api/receipts/7", "", ""},
		{http.MethodPost, "/api/receipts/parse", "", ""},
		{http.MethodPost, "/api/receipts/parse/sample", "", ""},
		{http.MethodPost, "/api/transactions", "", ""},
	}
	for _, tc := range testCases {
		op, id := receiptOperation(tc.method, tc.path)
		assert.Equal(t, tc.op, op, tc.method+" "+tc.path)
		assert.Equal(t, tc.id, id, tc.method+" "+tc.path)
	}
}

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, isStrongPassword("Passw0rdOK"))
	assert.False(t, isStrongPassword("short1A"))
	assert.False(t, isStrongPassword("alllowercase1"))
	assert.False(t, isStrongPassword("NoDigitsHere"))
}
