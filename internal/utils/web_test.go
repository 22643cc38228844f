package utils

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openboard-dev/openboard/internal/errors"
	"github.com/stretchr/testify/assert"
)

type sampleBody struct {
	Name string `json:"name" validate:"required"`
	Url  string `json:"url" validate:"omitempty,url"`
}

func body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func TestDecodeValidate(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expectErr bool
	}{
		{name: "valid", input: `{"name":"x","url":"https://example.com"}`, expectErr: false},
		{name: "missing required field", input: `{"url":"https://example.com"}`, expectErr: true},
		{name: "invalid url", input: `{"name":"x","url":"not a url"}`, expectErr: true},
		{name: "invalid json", input: `{broken`, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var b sampleBody
			err := DecodeValidate(body(tc.input), &b)
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWriteErrorAndStatusCode(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteErrorAndStatusCode(rr, errors.NotFound("Board not found"))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	WriteErrorAndStatusCode(rr, io.ErrUnexpectedEOF)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGetIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-REAL-IP", "203.0.113.9")
	ip, err := GetIP(r)
	assert.NoError(t, err)
	assert.Equal(t, "203.0.113.9", ip)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-FORWARDED-FOR", "garbage, 198.51.100.7")
	ip, err = GetIP(r)
	assert.NoError(t, err)
	assert.Equal(t, "198.51.100.7", ip)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.4:1234"
	ip, err = GetIP(r)
	assert.NoError(t, err)
	assert.Equal(t, "192.0.2.4", ip)
}
