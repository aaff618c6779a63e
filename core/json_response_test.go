package core

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, map[string]string{"id": "123"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"123"}`, w.Body.String())
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusBadRequest, "Missing userId or email")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Missing userId or email"}`, w.Body.String())
}

func TestWriteHTTPError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{
			name:         "http error renders its own status",
			err:          ErrNotFound,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"not_found"}`,
		},
		{
			name:         "wrapped http error unwraps",
			err:          errors.Join(errors.New("row missing"), ErrNotFound),
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"not_found"}`,
		},
		{
			name:         "custom http error",
			err:          NewHTTPError(http.StatusTeapot, "teapot"),
			expectedCode: http.StatusTeapot,
			expectedBody: `{"error":"teapot"}`,
		},
		{
			name:         "plain error hides detail",
			err:          errors.New("pq: connection refused"),
			expectedCode: http.StatusInternalServerError,
			expectedBody: `{"error":"internal_server_error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteHTTPError(w, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
