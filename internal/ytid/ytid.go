// Package ytid validates YouTube video identifiers.
package ytid

// Length is the fixed length of a YouTube video identifier.
const Length = 11

// Valid reports whether id has the upstream provider's identifier shape:
// exactly 11 characters from [A-Za-z0-9_-]. Callers must reject invalid
// identifiers before any upstream call so that garbage input never reaches
// the metadata client.
func Valid(id string) bool {
	if len(id) != Length {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}
