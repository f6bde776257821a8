package httprouter

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandleMethodAndPath(t *testing.T) {
	r := New()
	r.HandleFunc("POST /api/login", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest("POST", "/api/login", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}

	// The same path with a different method is not registered.
	req = httptest.NewRequest("GET", "/api/login", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code == http.StatusCreated {
		t.Error("expected GET on POST-only route to fail")
	}
}

func TestHandleDefaultsToGet(t *testing.T) {
	r := New()
	r.HandleFunc("/plain", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/plain", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestPathParams(t *testing.T) {
	r := New()
	getter := NewParamGeter()

	var got string
	r.HandleFunc("GET /api/conversations/:id", func(w http.ResponseWriter, req *http.Request) {
		got = getter.Get(req.Context()).ByName("id")
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/conversations/c123", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if got != "c123" {
		t.Errorf("expected param c123, got %q", got)
	}
}
