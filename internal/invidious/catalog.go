package invidious

import (
	"strconv"
	"strings"

	"github.com/ManuGH/yt2g/internal/hls"
	"github.com/ManuGH/yt2g/internal/resolve"
)

// videoPayload is the subset of the Invidious /api/v1/videos response the
// catalog builder consumes.
type videoPayload struct {
	FormatStreams   []formatPayload `json:"formatStreams"`
	AdaptiveFormats []formatPayload `json:"adaptiveFormats"`
	HLSUrl          string          `json:"hlsUrl"`
}

type formatPayload struct {
	URL          string `json:"url"`
	Itag         string `json:"itag"`
	Type         string `json:"type"` // e.g. `video/mp4; codecs="avc1.4d401f"`
	Container    string `json:"container"`
	QualityLabel string `json:"qualityLabel"`
	Resolution   string `json:"resolution"`
	Bitrate      string `json:"bitrate"` // Invidious serialises bitrates as strings
	AudioQuality string `json:"audioQuality"`
}

// buildCatalog normalizes the upstream payload into resolver formats.
// Entries without a URL are dropped; everything else is carried through so
// the resolver alone decides viability.
func buildCatalog(payload *videoPayload) []resolve.Format {
	catalog := make([]resolve.Format, 0, len(payload.FormatStreams)+len(payload.AdaptiveFormats))

	// Progressive streams carry both tracks in one file.
	for _, fs := range payload.FormatStreams {
		if fs.URL == "" {
			continue
		}
		catalog = append(catalog, resolve.Format{
			QualityLabel: qualityLabel(fs),
			MimeType:     fs.Type,
			Container:    container(fs),
			HasVideo:     true,
			HasAudio:     true,
			Codecs:       codecsOf(fs.Type),
			URL:          fs.URL,
		})
	}

	// Adaptive formats are single-track video or audio.
	for _, af := range payload.AdaptiveFormats {
		if af.URL == "" {
			continue
		}
		audio := strings.HasPrefix(af.Type, "audio/")
		f := resolve.Format{
			QualityLabel: qualityLabel(af),
			MimeType:     af.Type,
			Container:    container(af),
			HasVideo:     !audio,
			HasAudio:     audio,
			Codecs:       codecsOf(af.Type),
			URL:          af.URL,
		}
		if audio {
			if b, err := strconv.Atoi(af.Bitrate); err == nil {
				f.AudioBitrate = b
			}
		}
		catalog = append(catalog, f)
	}

	return catalog
}

// hlsFormats maps master playlist variants into catalog entries. Variants
// without an advertised resolution (audio-only or irregular entries) are
// skipped: they cannot be quality-ranked.
func hlsFormats(variants []hls.Variant) []resolve.Format {
	formats := make([]resolve.Format, 0, len(variants))
	for _, v := range variants {
		if v.Height <= 0 || v.URI == "" {
			continue
		}
		formats = append(formats, resolve.Format{
			QualityLabel: strconv.Itoa(v.Height) + "p",
			MimeType:     `video/mp4; codecs="` + v.Codecs + `"`,
			Container:    "m3u8",
			HasVideo:     true,
			HasAudio:     true,
			IsHLS:        true,
			Codecs:       v.Codecs,
			URL:          v.URI,
		})
	}
	return formats
}

// qualityLabel prefers the explicit label and falls back to the advertised
// resolution ("360p"), which Invidious sets on progressive streams.
func qualityLabel(f formatPayload) string {
	if f.QualityLabel != "" {
		return f.QualityLabel
	}
	return f.Resolution
}

// container prefers the explicit field and falls back to the mime subtype.
func container(f formatPayload) string {
	if f.Container != "" {
		return f.Container
	}
	mediaType, _, _ := strings.Cut(f.Type, ";")
	_, subtype, ok := strings.Cut(mediaType, "/")
	if !ok {
		return ""
	}
	return strings.TrimSpace(subtype)
}

// codecsOf extracts the codecs parameter from a mime type, passing the value
// through opaquely.
func codecsOf(mimeType string) string {
	_, after, ok := strings.Cut(mimeType, `codecs="`)
	if !ok {
		return ""
	}
	codecs, _, ok := strings.Cut(after, `"`)
	if !ok {
		return ""
	}
	return codecs
}
