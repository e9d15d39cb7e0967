package core

import (
	"errors"
	"net/http"
	"testing"
)

func TestLayoutErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *LayoutError
		want int
	}{
		{"invalid request", NewInvalidRequestError("bad issueId", nil), http.StatusBadRequest},
		{"upstream unavailable", NewUpstreamUnavailableError("db down", nil), http.StatusServiceUnavailable},
		{"computation timeout", NewComputationTimeoutError("deadline exceeded", nil), http.StatusGatewayTimeout},
		{"invalid configuration", NewInvalidConfigurationError("columnCount must be >= 1"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatusCode(); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLayoutErrorDefaultStatusByType(t *testing.T) {
	e := &LayoutError{Type: ErrorTypeUpstreamUnavailable, Message: "no fallback"}
	if got := e.HTTPStatusCode(); got != http.StatusServiceUnavailable {
		t.Errorf("expected 503 for zero StatusCode, got %d", got)
	}
}

func TestLayoutErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := NewUpstreamUnavailableError("submission listing failed", cause)

	if !errors.Is(wrapped, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}

	var le *LayoutError
	if !errors.As(error(wrapped), &le) {
		t.Fatal("expected errors.As to match *LayoutError")
	}
	if le.Type != ErrorTypeUpstreamUnavailable {
		t.Errorf("unexpected type %s", le.Type)
	}
}

func TestLayoutErrorToJSON(t *testing.T) {
	e := NewInvalidRequestError("issueId must be a positive integer", nil)
	body := e.ToJSON()

	inner, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in JSON body")
	}
	if inner["message"] != "issueId must be a positive integer" {
		t.Errorf("unexpected message %v", inner["message"])
	}
	if inner["type"] != ErrorTypeInvalidRequest {
		t.Errorf("unexpected type %v", inner["type"])
	}
}

func TestAspectRatio(t *testing.T) {
	img := SubmissionImage{ID: 1, Width: 1200, Height: 400}
	if got := img.AspectRatio(); got != 3.0 {
		t.Errorf("AspectRatio() = %f, want 3.0", got)
	}

	degenerate := SubmissionImage{ID: 2, Width: 800, Height: 0}
	if got := degenerate.AspectRatio(); got != 0 {
		t.Errorf("AspectRatio() for zero height = %f, want 0", got)
	}
}
