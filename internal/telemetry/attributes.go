package telemetry

import "go.opentelemetry.io/otel/attribute"

// Common attribute keys for consistent tracing across the application.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	StreamVideoIDKey = "stream.video_id"
	StreamTierKey    = "stream.tier"
	StreamKindKey    = "stream.kind"
	StreamMirrorKey  = "stream.mirror"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// StreamAttributes creates resolution-related span attributes.
func StreamAttributes(videoID, tier, kind string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if videoID != "" {
		attrs = append(attrs, attribute.String(StreamVideoIDKey, videoID))
	}
	if tier != "" {
		attrs = append(attrs, attribute.String(StreamTierKey, tier))
	}
	if kind != "" {
		attrs = append(attrs, attribute.String(StreamKindKey, kind))
	}
	return attrs
}
