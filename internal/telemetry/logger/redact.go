package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
)

// Group keys are shared secrets: anyone holding one can join the group.
// They must never reach log output, so the handler rewrites any
// attribute whose key looks sensitive. Call sites that need to
// correlate log lines about a group use KeyFingerprint instead.

const redactedValue = "***REDACTED***"

var sensitivePatterns = []string{
	"key",
	"secret",
	"password",
	"token",
	"credential",
	"auth",
}

// IsSensitiveKey reports whether an attribute key names a value that
// must not be logged.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, p := range sensitivePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// redactSensitive is the slog ReplaceAttr hook. Non-empty string
// values under sensitive keys are replaced; groups are walked
// recursively.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if a.Value.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		members := a.Value.Group()
		rewritten := make([]slog.Attr, len(members))
		for i, m := range members {
			rewritten[i] = redactSensitive(m)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewritten...)}
	}
	return a
}

// KeyFingerprint returns a short stable hash of a group key, safe to
// log. Empty keys fingerprint to the empty string.
func KeyFingerprint(key string) string {
	if key == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:4])
}
