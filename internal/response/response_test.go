package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestFail_UsesCodeMessageAndRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware(zerolog.Nop()))
	r.GET("/x", func(c *gin.Context) {
		FailWithFields(c, http.StatusUnprocessableEntity, ErrInvalidQuestionData, map[string]string{"correct_order": "item \"z\" not found"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-123")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrInvalidQuestionData, body.Error.Code)
	assert.Equal(t, GetMessage(ErrInvalidQuestionData), body.Error.Message)
	assert.Contains(t, body.Error.Fields, "correct_order")
	assert.Equal(t, "req-123", body.Metadata.RequestID)
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, 3, NewPagination(1, 10, 21).TotalPages)
	assert.Equal(t, 2, NewPagination(1, 10, 20).TotalPages)
	assert.Equal(t, 0, NewPagination(1, 10, 0).TotalPages)
	assert.Equal(t, 0, NewPagination(1, 0, 5).TotalPages)
}

func TestGetMessage_UnknownCode(t *testing.T) {
	assert.Equal(t, "An unexpected error occurred.", GetMessage("NOPE"))
}
