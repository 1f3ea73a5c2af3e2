// Package resolve picks the best deliverable representation of a video from
// a catalog of upstream-offered formats.
package resolve

import "strconv"

// Format describes one encoding the upstream provider currently offers.
// Instances are immutable by convention; the resolver never mutates them.
type Format struct {
	// QualityLabel encodes vertical resolution, e.g. "1080p". Empty or
	// non-numeric labels exclude the format from quality-ranked tiers.
	QualityLabel string

	// MimeType is the media container description, e.g.
	// `video/mp4; codecs="avc1.4d401f"`. Only tested for an "mp4" substring.
	MimeType string

	// Container is the explicit container identifier, e.g. "mp4".
	Container string

	HasVideo bool
	HasAudio bool

	// IsHLS marks a segmented-playlist stream rather than a single file.
	IsHLS bool

	// Codecs is opaque and passed through to the client untouched.
	Codecs string

	// URL is upstream-issued and time-limited. Never rewritten or cached.
	URL string

	// AudioBitrate is the declared audio bitrate in bits per second, zero
	// when unknown. Used only to rank audio-only formats.
	AudioBitrate int
}

// Height returns the numeric prefix of the quality label ("1080p" -> 1080).
// The second return is false when the label has no parseable numeric prefix;
// such formats are excluded from ranking, never treated as height zero.
func (f Format) Height() (int, bool) {
	return parseHeight(f.QualityLabel)
}

func parseHeight(label string) (int, bool) {
	i := 0
	for i < len(label) && label[i] >= '0' && label[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	h, err := strconv.Atoi(label[:i])
	if err != nil {
		return 0, false
	}
	return h, true
}
