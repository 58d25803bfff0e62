package domain

import (
	"strings"
	"testing"
)

func TestAmbiguousServiceErrorMessage(t *testing.T) {
	err := &AmbiguousServiceError{ServiceIDs: []string{"blog", "shop"}}
	msg := err.Error()

	if !strings.Contains(msg, "serviceId is required") {
		t.Errorf("message should say serviceId is required, got %q", msg)
	}
	if !strings.Contains(msg, "blog, shop") {
		t.Errorf("message should enumerate services, got %q", msg)
	}
}

func TestUnknownServiceErrorMessage(t *testing.T) {
	err := &UnknownServiceError{ServiceID: "missing", Configured: []string{"blog"}}
	msg := err.Error()

	if !strings.Contains(msg, `unknown service "missing"`) {
		t.Errorf("message should name the unknown service, got %q", msg)
	}
	if !strings.Contains(msg, "blog") {
		t.Errorf("message should enumerate configured services, got %q", msg)
	}
}

func TestFormatServiceIDsEmpty(t *testing.T) {
	err := &UnknownServiceError{ServiceID: "missing"}
	if !strings.Contains(err.Error(), "none") {
		t.Errorf("expected 'none' for empty service list, got %q", err.Error())
	}
}

func TestConfigurationErrorWrapping(t *testing.T) {
	inner := &ValidationError{Message: "bad"}
	err := &ConfigurationError{Reason: "failed to load", Err: inner}

	if !strings.Contains(err.Error(), "failed to load") {
		t.Errorf("message should carry the reason, got %q", err.Error())
	}
	if err.Unwrap() != inner {
		t.Error("expected Unwrap to return the inner error")
	}

	bare := &ConfigurationError{Reason: "just a reason"}
	if bare.Error() != "just a reason" {
		t.Errorf("unexpected message: %q", bare.Error())
	}
}

func TestRemoteAPIErrorMessage(t *testing.T) {
	err := &RemoteAPIError{StatusCode: 404, Status: "404 Not Found", Body: `{"message":"not found"}`}
	msg := err.Error()
	if !strings.Contains(msg, "404 Not Found") {
		t.Errorf("message should carry the status line, got %q", msg)
	}
	if !strings.Contains(msg, "not found") {
		t.Errorf("message should carry the body, got %q", msg)
	}

	noBody := &RemoteAPIError{StatusCode: 500, Status: "500 Internal Server Error"}
	if noBody.Error() != "microCMS API error: 500 Internal Server Error" {
		t.Errorf("unexpected message: %q", noBody.Error())
	}
}

func TestPayloadTooLargeErrorMessage(t *testing.T) {
	err := &PayloadTooLargeError{Size: MaxInlineUploadSize + 1, Limit: MaxInlineUploadSize}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
