package geocode

import "time"

// Normalize exposes normalize for testing.
var Normalize = normalize

// SetDiskClock overrides the disk cache clock.
func (c *Client) SetDiskClock(now func() time.Time) {
	if c.disk != nil {
		c.disk.now = now
	}
}
