package resolve

import (
	"strings"

	"github.com/samber/lo"
)

// Kind tags the shape of a resolution result.
type Kind string

const (
	// KindSingleStream delivers exactly one playable URL via redirect.
	KindSingleStream Kind = "single"
	// KindPairedStream delivers separate video and audio legs for
	// client-side assembly.
	KindPairedStream Kind = "paired"
	// KindUnresolvable means no tier produced a usable candidate.
	KindUnresolvable Kind = "unresolvable"
)

// Tier names the policy tier that produced a result.
type Tier string

const (
	TierConstrainedHLS Tier = "hls_constrained"
	TierGeneralHLS     Tier = "hls_general"
	TierPairedDash     Tier = "dash_pair"
	TierNone           Tier = "none"
)

// Reason explains a resolution outcome for logs and metrics.
type Reason string

const (
	ReasonHLSSelected  Reason = "hls_selected"
	ReasonPairSelected Reason = "dash_pair_selected"
	ReasonNoCandidates Reason = "no_viable_format"
)

// Input carries everything the resolver needs for one request.
type Input struct {
	Formats     []Format
	Constrained bool
}

// StreamRef is one playable leg of a paired result.
type StreamRef struct {
	URL    string
	Codecs string
}

// VideoRef is the video leg of a paired result, keyed by numeric height.
type VideoRef struct {
	Height int
	URL    string
	Codecs string
}

// Result is the resolver's output.
type Result struct {
	Kind   Kind
	Tier   Tier
	Reason Reason

	// URL is set for KindSingleStream.
	URL string

	// Video and Audio are set for KindPairedStream.
	Video VideoRef
	Audio StreamRef
}

// tier is one entry of the ordered fallback policy. Tiers are evaluated in
// order and the first non-empty candidate set wins; later tiers are never
// consulted once a tier succeeds.
type tier struct {
	name    Tier
	applies func(Input) bool
	pick    func(Input) (Result, bool)
}

var tiers = []tier{
	{
		// Segmented stream for clients that cannot pair separate tracks.
		// Shares the HLS predicate with the general tier: an empty
		// candidate set falls through instead of failing the request.
		name:    TierConstrainedHLS,
		applies: func(in Input) bool { return in.Constrained },
		pick:    pickHLS(TierConstrainedHLS),
	},
	{
		name:    TierGeneralHLS,
		applies: func(Input) bool { return true },
		pick:    pickHLS(TierGeneralHLS),
	},
	{
		name:    TierPairedDash,
		applies: func(Input) bool { return true },
		pick:    pickPaired,
	},
}

// Resolve applies the tiered fallback policy to the catalog. It is pure:
// identical input always yields an identical result and the catalog is
// never mutated.
func Resolve(in Input) Result {
	for _, t := range tiers {
		if !t.applies(in) {
			continue
		}
		if res, ok := t.pick(in); ok {
			return res
		}
	}
	return Result{Kind: KindUnresolvable, Tier: TierNone, Reason: ReasonNoCandidates}
}

func isHLSCandidate(f Format) bool {
	if !f.IsHLS || !strings.Contains(f.MimeType, "mp4") {
		return false
	}
	_, ok := f.Height()
	return ok
}

func isPairableVideo(f Format) bool {
	if !f.HasVideo || f.HasAudio || f.Container != "mp4" {
		return false
	}
	_, ok := f.Height()
	return ok
}

func isAudioOnly(f Format) bool {
	return f.HasAudio && !f.HasVideo
}

// bestByHeight returns the highest-quality format matching pred. Ties and
// equal heights keep the earliest catalog entry so selection is stable
// regardless of how often it runs.
func bestByHeight(formats []Format, pred func(Format) bool) (Format, bool) {
	candidates := lo.Filter(formats, func(f Format, _ int) bool { return pred(f) })
	if len(candidates) == 0 {
		return Format{}, false
	}
	best := lo.MaxBy(candidates, func(a, b Format) bool {
		ha, _ := a.Height()
		hb, _ := b.Height()
		return ha > hb
	})
	return best, true
}

// BestAudio picks the highest-bitrate audio-only format. Formats with an
// unknown bitrate rank below any format that declares one; ties keep
// catalog order.
func BestAudio(formats []Format) (Format, bool) {
	candidates := lo.Filter(formats, func(f Format, _ int) bool { return isAudioOnly(f) })
	if len(candidates) == 0 {
		return Format{}, false
	}
	best := lo.MaxBy(candidates, func(a, b Format) bool {
		return a.AudioBitrate > b.AudioBitrate
	})
	return best, true
}

func pickHLS(name Tier) func(Input) (Result, bool) {
	return func(in Input) (Result, bool) {
		best, ok := bestByHeight(in.Formats, isHLSCandidate)
		if !ok {
			return Result{}, false
		}
		return Result{
			Kind:   KindSingleStream,
			Tier:   name,
			Reason: ReasonHLSSelected,
			URL:    best.URL,
		}, true
	}
}

func pickPaired(in Input) (Result, bool) {
	video, ok := bestByHeight(in.Formats, isPairableVideo)
	if !ok {
		return Result{}, false
	}
	audio, ok := BestAudio(in.Formats)
	if !ok {
		return Result{}, false
	}
	height, _ := video.Height()
	return Result{
		Kind:   KindPairedStream,
		Tier:   TierPairedDash,
		Reason: ReasonPairSelected,
		Video:  VideoRef{Height: height, URL: video.URL, Codecs: video.Codecs},
		Audio:  StreamRef{URL: audio.URL, Codecs: audio.Codecs},
	}, true
}
