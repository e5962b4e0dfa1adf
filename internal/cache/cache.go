// Package cache memoizes verification results. Verification is
// deterministic in (score, rule configuration, engine), so a content
// key built from those fingerprints can safely replay a previous
// VerificationResult.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache defines the interface for result caching.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds the memoization key for one verification run from the
// score fingerprint, the rule-configuration fingerprint and the engine
// name.
func Key(scoreFP, rulesFP, engine string) string {
	hash := sha256.Sum256([]byte(strings.Join([]string{scoreFP, rulesFP, engine}, "|")))
	return "cantus:v1:" + hex.EncodeToString(hash[:])
}
