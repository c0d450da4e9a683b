package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestResponseEnvelopeShapes(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
		t.Helper()
		if got := rec.Header().Get("Content-Type"); got != "application/json" {
			t.Fatalf("content type = %q", got)
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return body
	}

	t.Run("success carries data", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeSuccess(rec, 200, map[string]string{"user_id": "u-1"})
		body := decode(t, rec)
		if body["status"] != "success" {
			t.Fatalf("status = %v", body["status"])
		}
		data, ok := body["data"].(map[string]any)
		if !ok || data["user_id"] != "u-1" {
			t.Fatalf("data = %v", body["data"])
		}
		if _, present := body["code"]; present {
			t.Fatal("success body leaked an error code")
		}
	})

	t.Run("message omits data", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeMessage(rec, 200, "License revoked")
		body := decode(t, rec)
		if body["status"] != "success" || body["message"] != "License revoked" {
			t.Fatalf("body = %v", body)
		}
		if _, present := body["data"]; present {
			t.Fatal("message body carried data")
		}
	})

	t.Run("error carries code and message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		writeError(rec, 404, "KEY_NOT_FOUND", "license key not found")
		if rec.Code != 404 {
			t.Fatalf("status code = %d", rec.Code)
		}
		body := decode(t, rec)
		if body["status"] != "error" || body["code"] != "KEY_NOT_FOUND" || body["message"] != "license key not found" {
			t.Fatalf("body = %v", body)
		}
	})
}
