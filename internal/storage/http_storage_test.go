package storage

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPImageFetcher_RetryLogic(t *testing.T) {
	tests := []struct {
		name          string
		responses     []int
		expectCalls   int
		expectError   bool
		errorContains string
	}{
		{
			name:        "success on first attempt",
			responses:   []int{200},
			expectCalls: 1,
		},
		{
			name:        "success after 5xx",
			responses:   []int{500, 200},
			expectCalls: 2,
		},
		{
			name:          "4xx is not retried",
			responses:     []int{404},
			expectCalls:   1,
			expectError:   true,
			errorContains: "status code 404",
		},
		{
			name:          "all 5xx exhausts attempts",
			responses:     []int{500, 502, 503},
			expectCalls:   3,
			expectError:   true,
			errorContains: "status code 503",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				status := tt.responses[calls]
				calls++
				if status == http.StatusOK {
					w.Header().Set("Content-Type", "image/jpeg")
					w.Write([]byte("jpeg-bytes"))
					return
				}
				w.WriteHeader(status)
			}))
			defer server.Close()

			fetcher := NewHTTPImageFetcher(1024 * 1024)
			data, err := fetcher.FetchImage(context.Background(), server.URL)

			if calls != tt.expectCalls {
				t.Errorf("server saw %d calls, want %d", calls, tt.expectCalls)
			}
			if tt.expectError {
				if err == nil {
					t.Fatal("expected an error")
				}
				if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("error %q does not contain %q", err, tt.errorContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("FetchImage() error: %v", err)
			}
			if !bytes.Equal(data, []byte("jpeg-bytes")) {
				t.Errorf("unexpected body %q", data)
			}
		})
	}
}

func TestHTTPImageFetcher_SizeLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 2048))
	}))
	defer server.Close()

	fetcher := NewHTTPImageFetcher(1024)
	if _, err := fetcher.FetchImage(context.Background(), server.URL); err == nil {
		t.Fatal("expected an error for an oversized body")
	}
}
