// httpclient/timeouts.go
package httpclient

import (
	"time"
)

// ModifyHttpTimeout modifies the HTTP timeout applied to requests in flight
// after the call. Safe for concurrent use.
func (c *Client) ModifyHttpTimeout(newTimeout time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.http.Timeout = newTimeout
}

// HttpTimeout returns the currently configured HTTP timeout.
func (c *Client) HttpTimeout() time.Duration {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.http.Timeout
}
