package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "req-1")
	return c, w
}

func TestSuccess_WritesEnvelope(t *testing.T) {
	c, w := newContext()

	Success(c, http.StatusCreated, map[string]string{"meetingId": "abcd-efgh-ijkl"}, "meeting created", nil)

	require.Equal(t, http.StatusCreated, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "req-1", body["request_id"])
	assert.Equal(t, "meeting created", body["message"])
	assert.Equal(t, "abcd-efgh-ijkl", body["data"].(map[string]any)["meetingId"])
	assert.NotContains(t, body, "error")
}

func TestError_DefaultsToBadRequest(t *testing.T) {
	c, w := newContext()

	Error[any](c, 0, "invalid payload", ErrorBody{Code: "validation_error", Details: map[string]string{"title": "is required"}})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Success bool      `json:"success"`
		Error   ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, "is required", body.Error.Details["title"])
}
