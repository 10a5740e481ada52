package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusNotFound, "not_found", "account 3: not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"not_found","message":"account 3: not found"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	decode := func(body string) (payload, error) {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := DecodeJSON(req, &p)
		return p, err
	}

	p, err := decode(`{"name":"ada"}`)
	require.NoError(t, err)
	assert.Equal(t, "ada", p.Name)

	_, err = decode(``)
	assert.EqualError(t, err, "request body is empty")

	_, err = decode(`{"name":"ada","admin":true}`)
	assert.Error(t, err)

	_, err = decode(`{"name":"ada"}{"name":"bob"}`)
	assert.Error(t, err)

	_, err = decode(`{"name":`)
	assert.Error(t, err)
}
