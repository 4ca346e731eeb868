package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVsRedactsSensitiveKeys(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"user_id", int64(7),
		"password", "hunter22",
		"Authorization", "Bearer abc",
		"jwt_secret", "s3cr3t",
		"group_id", int64(3),
	})
	assert.Equal(t, []interface{}{
		"user_id", int64(7),
		"password", "[REDACTED]",
		"Authorization", "[REDACTED]",
		"jwt_secret", "[REDACTED]",
		"group_id", int64(3),
	}, got)
}

func TestSanitizeKVsOddLength(t *testing.T) {
	got := sanitizeKVs([]interface{}{"group_id", 1, "dangling"})
	assert.Equal(t, []interface{}{"group_id", 1, "dangling"}, got)
}
