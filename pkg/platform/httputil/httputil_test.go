package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "corpcheck/pkg/domain-errors"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body map[string]map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body["error"]["code"], body["error"]["message"]
}

func TestWriteError(t *testing.T) {
	t.Run("bad request maps to 400 with the message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid input"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
		code, message := decodeError(t, w)
		if code != "bad_request" {
			t.Fatalf("expected error code bad_request, got %q", code)
		}
		if message != "invalid input" {
			t.Fatalf("expected message to be returned, got %q", message)
		}
	})

	t.Run("not found maps to 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeNotFound, "record not found"))

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
		}
	})

	t.Run("unavailable maps to 503", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeUnavailable, "backend unavailable"))

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, w.Code)
		}
	})

	t.Run("uncoded error collapses to 500 with a generic message", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, http.ErrBodyNotAllowed)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
		_, message := decodeError(t, w)
		if message == http.ErrBodyNotAllowed.Error() {
			t.Fatalf("expected the internal detail to be hidden")
		}
	})
}

func TestDecode(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("parses a valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"left-pad"}`))
		out, err := Decode[payload](r)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if out.Name != "left-pad" {
			t.Fatalf("expected name left-pad, got %q", out.Name)
		}
	})

	t.Run("rejects unknown fields as bad request", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","bogus":1}`))
		_, err := Decode[payload](r)
		if err == nil {
			t.Fatal("expected an error")
		}
		if dErrors.CodeOf(err) != dErrors.CodeBadRequest {
			t.Fatalf("expected bad_request, got %q", dErrors.CodeOf(err))
		}
	})
}
