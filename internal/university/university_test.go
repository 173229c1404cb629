package university

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStaticVerifier(t *testing.T) {
	v := NewStaticVerifier(DemoIDs, discardLogger())

	ok, err := v.Verify(context.Background(), "U2025-003")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify(context.Background(), "U2025-999")
	require.NoError(t, err)
	assert.False(t, ok)
}

func directory(t *testing.T, students map[string][2]bool) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req struct {
			StudentID string `json:"student_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s, ok := students[req.StudentID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"exists": s[0], "active": s[1]})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPVerifier(t *testing.T) {
	server := directory(t, map[string][2]bool{
		"U2025-001": {true, true},
		"U2019-042": {true, false},
	})
	v := NewHTTPVerifier(server.URL, "secret", discardLogger())
	ctx := context.Background()

	tests := []struct {
		id   string
		want bool
	}{
		{"U2025-001", true},
		{"U2019-042", false},
		{"U0000-000", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			ok, err := v.Verify(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestHTTPVerifierUnexpectedStatus(t *testing.T) {
	server := directory(t, nil)
	v := NewHTTPVerifier(server.URL, "wrong", discardLogger())

	_, err := v.Verify(context.Background(), "U2025-001")
	assert.ErrorContains(t, err, "status 401")
}

func TestHTTPVerifierNetworkError(t *testing.T) {
	v := NewHTTPVerifier("http://localhost:99999", "secret", discardLogger())

	_, err := v.Verify(context.Background(), "U2025-001")
	assert.Error(t, err)
}

func TestHTTPVerifierInvalidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(server.Close)
	v := NewHTTPVerifier(server.URL, "", discardLogger())

	_, err := v.Verify(context.Background(), "U2025-001")
	assert.ErrorContains(t, err, "decode")
}
