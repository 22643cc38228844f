package utils

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/openboard-dev/openboard/internal/errors"
	"github.com/openboard-dev/openboard/internal/logger"
)

func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	if e, ok := err.(*errors.ErrorWithStatusCode); ok {
		http.Error(w, err.Error(), e.StatusCode)
		return
	}
	// default error is 500
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func GetIP(r *http.Request) (string, error) {
	// X-REAL-IP header first
	ip := r.Header.Get("X-REAL-IP")
	if netIP := net.ParseIP(ip); netIP != nil {
		return ip, nil
	}

	// then X-FORWARDED-FOR
	ips := r.Header.Get("X-FORWARDED-FOR")
	for _, candidate := range strings.Split(ips, ",") {
		candidate = strings.TrimSpace(candidate)
		if netIP := net.ParseIP(candidate); netIP != nil {
			return candidate, nil
		}
	}

	// finally RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	if netIP := net.ParseIP(ip); netIP != nil {
		return ip, nil
	}
	return "", errors.BadRequest("No valid ip found")
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeValidate decodes a JSON request body and checks its validate tags.
func DecodeValidate(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid request body", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Required fields missing or invalid", StatusCode: http.StatusBadRequest}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid request body", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}

// ValidateStruct runs validator tags on an already-decoded value (used for
// per-variant block settings).
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		logger.Log.Debug("settings validation failed", "error", err)
		return &errors.ErrorWithStatusCode{Message: "Invalid settings: " + err.Error(), StatusCode: http.StatusBadRequest}
	}
	return nil
}
