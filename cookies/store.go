// Package cookies persists cookie name/value pairs across process runs.
//
// The dispatcher treats the store as best-effort shared state: loads never
// fail and saves never surface errors to the caller. Persistence problems
// are logged and the primary request proceeds.
package cookies

// Store is the cookie persistence abstraction.
//
// Load returns the stored mapping; a missing, unreadable, or malformed
// backing store yields an empty map, never an error.
//
// Save merges the given mapping over the currently stored one (given
// entries win on key collision) and replaces the stored state. Failures are
// swallowed after logging.
type Store interface {
	Load() map[string]string
	Save(cookies map[string]string)
}

// merge overlays b on top of a into a fresh map. b wins on collision.
func merge(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}
