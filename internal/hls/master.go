// Package hls parses HLS master playlists into their variant streams.
package hls

import (
	"bufio"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Variant is one #EXT-X-STREAM-INF entry of a master playlist.
type Variant struct {
	URI        string
	Bandwidth  int
	Resolution string // "WxH" as advertised, may be empty
	Codecs     string
	Height     int // parsed from Resolution, zero when unknown
}

// ParseMaster extracts the variant streams from a master playlist. Relative
// variant URIs are resolved against base when base is a valid absolute URL.
func ParseMaster(playlist string, base string) ([]Variant, error) {
	var baseURL *url.URL
	if base != "" {
		if u, err := url.Parse(base); err == nil && u.IsAbs() {
			baseURL = u
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(playlist))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		variants []Variant
		pending  *Variant
		sawTag   bool
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if line == "#EXTM3U" {
			sawTag = true
			continue
		}

		if strings.HasPrefix(line, "#EXT-X-STREAM-INF:") {
			sawTag = true
			v := parseStreamInf(strings.TrimPrefix(line, "#EXT-X-STREAM-INF:"))
			pending = &v
			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		// URI line: belongs to the preceding #EXT-X-STREAM-INF, if any.
		if pending != nil {
			pending.URI = resolveURI(baseURL, line)
			variants = append(variants, *pending)
			pending = nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !sawTag {
		return nil, fmt.Errorf("hls: not a master playlist")
	}
	return variants, nil
}

// parseStreamInf decodes a #EXT-X-STREAM-INF attribute list. Attribute
// values may be quoted strings containing commas.
func parseStreamInf(attrs string) Variant {
	var v Variant
	for _, attr := range splitAttributes(attrs) {
		key, value, ok := strings.Cut(attr, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"`)
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "BANDWIDTH":
			if n, err := strconv.Atoi(value); err == nil {
				v.Bandwidth = n
			}
		case "RESOLUTION":
			v.Resolution = value
			if _, h, ok := strings.Cut(value, "x"); ok {
				if n, err := strconv.Atoi(h); err == nil {
					v.Height = n
				}
			}
		case "CODECS":
			v.Codecs = value
		}
	}
	return v
}

// splitAttributes splits a comma-separated attribute list without breaking
// quoted values apart.
func splitAttributes(s string) []string {
	var (
		parts    []string
		start    int
		inQuotes bool
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func resolveURI(base *url.URL, uri string) string {
	if base == nil {
		return uri
	}
	ref, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return base.ResolveReference(ref).String()
}
