package core

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/caasmo/authrelay/db"
	"github.com/caasmo/authrelay/db/mock"
)

func TestRequestPasswordResetHandler(t *testing.T) {
	t.Run("identical response for known and unknown emails", func(t *testing.T) {
		responses := make([]string, 0, 2)
		for _, insertErr := range []error{nil, db.ErrConstraintUnique} {
			mockDb := &mock.Db{
				InsertJobFunc: func(job db.Job) error {
					return insertErr
				},
			}
			app := newTestApp(t, mockDb)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", strings.NewReader(`{"email":"a@example.com"}`))
			rr := httptest.NewRecorder()
			app.RequestPasswordResetHandler(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
			}
			responses = append(responses, rr.Body.String())
		}
		if responses[0] != responses[1] {
			t.Error("response must not vary with account existence")
		}
	})

	t.Run("enqueues reset job", func(t *testing.T) {
		var job db.Job
		mockDb := &mock.Db{
			InsertJobFunc: func(j db.Job) error {
				job = j
				return nil
			},
		}
		app := newTestApp(t, mockDb)

		req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", strings.NewReader(`{"email":"a@example.com"}`))
		rr := httptest.NewRecorder()
		app.RequestPasswordResetHandler(rr, req)

		if body := decodeBasic(t, rr); body.Code != CodeOkPasswordResetRequested {
			t.Errorf("expected code %q, got %q", CodeOkPasswordResetRequested, body.Code)
		}
		if job.JobType != "job_type_password_reset" {
			t.Errorf("unexpected job type %q", job.JobType)
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		app := newTestApp(t, &mock.Db{})

		req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password", strings.NewReader(`{"email":"nope"}`))
		rr := httptest.NewRecorder()
		app.RequestPasswordResetHandler(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
		}
	})
}

func TestConfirmPasswordResetHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		consumeErr error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "valid reset",
			body:       `{"token":"tok","password":"newlongpass"}`,
			wantStatus: http.StatusOK,
			wantCode:   CodeOkPasswordReset,
		},
		{
			name:       "unknown token",
			body:       `{"token":"tok","password":"newlongpass"}`,
			consumeErr: db.ErrTokenNotFound,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorInvalidToken,
		},
		{
			name:       "expired token",
			body:       `{"token":"tok","password":"newlongpass"}`,
			consumeErr: db.ErrTokenExpired,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorExpiredToken,
		},
		{
			name:       "short password",
			body:       `{"token":"tok","password":"short"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorWeakPassword,
		},
		{
			name:       "missing token",
			body:       `{"password":"newlongpass"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeErrorMissingFields,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			storedHash := ""
			revokedUser := ""
			mockDb := &mock.Db{
				ConsumePasswordResetFunc: func(token string, now time.Time, newPasswordHash string) (string, error) {
					if tc.consumeErr != nil {
						return "", tc.consumeErr
					}
					storedHash = newPasswordHash
					return "u1", nil
				},
				DeleteSessionsByUserFunc: func(userId string) error {
					revokedUser = userId
					return nil
				},
			}
			app := newTestApp(t, mockDb)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/reset-password", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			app.ConfirmPasswordResetHandler(rr, req)

			if rr.Code != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if body := decodeBasic(t, rr); body.Code != tc.wantCode {
				t.Errorf("expected code %q, got %q", tc.wantCode, body.Code)
			}

			if tc.wantCode == CodeOkPasswordReset {
				if storedHash == "" || storedHash == "newlongpass" {
					t.Error("expected a hashed password to reach the store")
				}
				if revokedUser != "u1" {
					t.Error("expected existing sessions to be revoked")
				}
			}
		})
	}
}
