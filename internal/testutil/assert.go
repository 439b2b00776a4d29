package testutil

import (
	"encoding/json"
	"testing"

	apperrors "github.com/runvoy/runadapt/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertAppErrorCode checks if the error has a specific error code.
func AssertAppErrorCode(t *testing.T, err error, expectedCode string, _ ...any) bool {
	t.Helper()
	code := apperrors.GetErrorCode(err)
	if code != expectedCode {
		return assert.Fail(t, "Error code mismatch", "Expected error code %q, got %q", expectedCode, code)
	}
	return true
}

// AssertAppErrorStatus checks if the error has a specific HTTP status code.
func AssertAppErrorStatus(t *testing.T, err error, expectedStatus int, _ ...any) bool {
	t.Helper()
	status := apperrors.GetStatusCode(err)
	if status != expectedStatus {
		return assert.Fail(t, "Status code mismatch", "Expected status %d, got %d", expectedStatus, status)
	}
	return true
}

// DecodeEnvelope decodes an error envelope body and checks its status code.
func DecodeEnvelope(t *testing.T, body []byte, expectedStatus int) apperrors.Envelope {
	t.Helper()
	var env apperrors.Envelope
	require.NoError(t, json.Unmarshal(body, &env), "body is not an error envelope: %s", body)
	assert.Equal(t, expectedStatus, env.StatusCode)
	return env
}
