package client

import "fmt"

// ErrorState describes the most recent failed dispatch. Code is nil when
// the failure was transport-level and no response was received.
type ErrorState struct {
	Message string
	Code    *int
}

// StatusError reports a response with a status outside the 2xx/3xx window.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s", e.Status)
}

// LastError returns the error state of the most recent dispatch, or nil if
// it succeeded. Transfer engine failures are not recorded here; they are
// reported through their own return values.
func (c *Client) LastError() *ErrorState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lastErr == nil {
		return nil
	}
	out := &ErrorState{Message: c.lastErr.Message}
	if c.lastErr.Code != nil {
		code := *c.lastErr.Code
		out.Code = &code
	}
	return out
}

func (c *Client) clearLastError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = nil
}

func (c *Client) setLastError(message string, code *int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = &ErrorState{Message: message, Code: code}
}
