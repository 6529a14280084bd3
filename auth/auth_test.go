package auth

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestAuth(t *testing.T) {
	apiKeyToPartition := map[string]string{
		"test-api-key-1": "partition-1",
		"test-api-key-2": "partition-2",
	}
	tests := []struct {
		name              string
		req               func() *http.Request
		expectedStatus    int
		expectedPartition string
	}{
		{
			name:           "no auth header returns 401",
			req:            func() *http.Request { return httptest.NewRequest("GET", "/", nil) },
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "auth header not in map returns 401",
			req: func() *http.Request {
				req := httptest.NewRequest("GET", "/", nil)
				req.Header.Set("Authorization", "Bearer not-in-map")
				return req
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "auth header in map returns 200",
			req: func() *http.Request {
				req := httptest.NewRequest("GET", "/", nil)
				req.Header.Set("Authorization", "Bearer test-api-key-1")
				return req
			},
			expectedStatus:    http.StatusOK,
			expectedPartition: "partition-1",
		},
		{
			name: "auth header doesn't need Bearer prefix",
			req: func() *http.Request {
				req := httptest.NewRequest("GET", "/", nil)
				req.Header.Set("Authorization", "test-api-key-2")
				return req
			},
			expectedStatus:    http.StatusOK,
			expectedPartition: "partition-2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var partition string
			var ok bool
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				partition, ok = GetPartition(r)
				if !ok {
					t.Error("expected partition to be set")
				}
				w.WriteHeader(http.StatusOK)
			})

			auth := New(apiKeyToPartition, h)
			w := httptest.NewRecorder()
			auth.ServeHTTP(w, tt.req())
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if partition != tt.expectedPartition {
				t.Errorf("expected partition to be %s, got %s", tt.expectedPartition, partition)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tests := []struct {
		name        string
		contents    string
		expectedErr bool
	}{
		{
			name:     "a valid key file loads",
			contents: `{"test-api-key": "test-partition"}`,
		},
		{
			name:        "an empty API key is rejected",
			contents:    `{"": "test-partition"}`,
			expectedErr: true,
		},
		{
			name:        "an empty partition is rejected",
			contents:    `{"test-api-key": " "}`,
			expectedErr: true,
		},
		{
			name:        "invalid JSON is rejected",
			contents:    `{`,
			expectedErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "apikeys.json")
			if err := os.WriteFile(filename, []byte(tt.contents), 0o600); err != nil {
				t.Fatal(err)
			}
			m, err := LoadFromFile(filename)
			if tt.expectedErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m["test-api-key"] != "test-partition" {
				t.Errorf("expected partition %q, got %q", "test-partition", m["test-api-key"])
			}
		})
	}
}

func TestLoadFromFileMissingFile(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error, got nil")
	}
}
