// Package uaprofile classifies requesting clients from their user agent.
package uaprofile

import "strings"

// Profile is the per-request client classification.
type Profile struct {
	// Constrained marks device families that cannot drive separate-track
	// (DASH-style) playback and need a single segmented URL.
	Constrained bool
}

// constrainedTokens are the device markers of the one platform family known
// to reject separate audio/video streams.
var constrainedTokens = []string{"iPad", "iPhone", "iPod"}

// Classify derives a Profile from the request's User-Agent header value.
// A missing or empty user agent classifies as not constrained: ambiguous
// input fails open and never blocks playback, it only changes which
// fallback tier is tried first.
func Classify(userAgent string) Profile {
	for _, token := range constrainedTokens {
		if strings.Contains(userAgent, token) {
			return Profile{Constrained: true}
		}
	}
	return Profile{}
}
