package errs

import (
	"errors"
	"testing"
)

func TestTransportErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(NewTransportError(0, cause))

	if !errors.Is(err, cause) {
		t.Fatal("expected transport error to wrap its cause")
	}
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatal("expected errors.As to find *TransportError")
	}
	if te.Error() != "Market API request failed" {
		t.Fatalf("unexpected message %q", te.Error())
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"status", NewTransportError(503, nil), "Market API request failed: status 503"},
		{"payload detail", NewInvalidPayloadError("Invalid market data", "Global Quote", "rate limited"), "Invalid market data: rate limited"},
		{"plain", NewMissingCredentialError(), "API key is required"},
		{"nil", nil, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Describe(tc.err); got != tc.want {
				t.Fatalf("Describe() = %q, want %q", got, tc.want)
			}
		})
	}
}
