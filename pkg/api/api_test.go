package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tagme/pkg/models"
	"tagme/pkg/records"
	"tagme/pkg/store"
	"tagme/pkg/token"
)

func newTestHandler(t *testing.T, s *Server) http.Handler {
	t.Helper()
	if err := store.Open(t.TempDir(), 0); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return token.Middleware(s.Router())
}

func seedUser(t *testing.T, id records.UserID, status models.Status, login string) {
	t.Helper()
	err := store.Update(func(tx *store.Txn) error {
		u := models.NewUser()
		u.Status = status
		u.Data.Login = login
		return records.Insert(tx, id, u)
	})
	if err != nil {
		t.Fatalf("seedUser(%d): %v", id, err)
	}
}

// do issues a request against h, optionally authenticated as uid.
func do(t *testing.T, h http.Handler, method, path string, uid uint64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if uid != 0 {
		req.Header.Set("Authorization", token.New(uid).String())
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("status = %d, body %s; want %d", rec.Code, rec.Body.String(), code)
	}
}

func wantError(t *testing.T, rec *httptest.ResponseRecorder, code int, msg string) {
	t.Helper()
	wantStatus(t, rec, code)
	out := decode[map[string]string](t, rec)
	if out["error"] != msg {
		t.Fatalf("error = %q; want %q", out["error"], msg)
	}
}
