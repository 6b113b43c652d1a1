package intake

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalace/site/internal/form"
	"github.com/stratalace/site/internal/leads"
)

func postPayload(t *testing.T, h http.Handler, p leads.Payload) (*httptest.ResponseRecorder, leads.Response) {
	t.Helper()
	body, ct, err := p.Encode()
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/leads", body)
	req.Header.Set("Content-Type", ct)
	if p.IdempotencyKey != "" {
		req.Header.Set(leads.IdempotencyHeader, p.IdempotencyKey)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp leads.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), "body=%s", rr.Body.String())
	return rr, resp
}

func TestHandlerAccepts(t *testing.T) {
	h := NewHandler(newTestService(t), nil)
	rr, resp := postPayload(t, h, validPayload("k"))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Reference)
	assert.Nil(t, resp.Error)
}

func TestHandlerValidationErrors(t *testing.T) {
	h := NewHandler(newTestService(t), nil)
	p := validPayload("k")
	p.Fields[form.ProjectScope] = strings.Repeat("a", form.MinProjectScope-1)

	rr, resp := postPayload(t, h, p)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, leads.ErrorTypeValidation, resp.Error.Type)
	assert.Contains(t, resp.Error.Errors, form.ProjectScope)
}

func TestHandlerUpstreamFailure(t *testing.T) {
	h := NewHandler(newTestService(t, &fakeNotifier{name: "crm", err: errBoom}), nil)
	rr, resp := postPayload(t, h, validPayload("k"))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, leads.ErrorTypeSubmission, resp.Error.Type)
	assert.Equal(t, leads.GenericSubmitMessage, resp.Error.Message)
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	h := NewHandler(newTestService(t), nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/leads", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
}

func TestHandlerRejectsNonFormBodies(t *testing.T) {
	h := NewHandler(newTestService(t), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{"companyName":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
