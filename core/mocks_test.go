package core

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/caasmo/authrelay/config"
	"github.com/caasmo/authrelay/db/mock"
)

// MockValidator allows overriding validation behavior per test.
type MockValidator struct {
	ContentTypeFunc func(r *http.Request, allowedType string) (jsonResponse, error)
}

func (m *MockValidator) ContentType(r *http.Request, allowedType string) (jsonResponse, error) {
	if m.ContentTypeFunc != nil {
		return m.ContentTypeFunc(r, allowedType)
	}
	return jsonResponse{}, nil
}

// newTestApp builds an App around the given db mock with a permissive
// validator and a discarded logger.
func newTestApp(t *testing.T, mockDb *mock.Db) *App {
	t.Helper()

	app, err := NewApp(
		WithDbApp(mockDb),
		WithConfigProvider(config.NewProvider(config.NewDefaultConfig())),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("failed to build test app: %v", err)
	}
	app.validator = &MockValidator{}
	return app
}
