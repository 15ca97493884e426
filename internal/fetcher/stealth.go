package fetcher

import (
	"fmt"
	"math/rand"
)

// Identity is the browser fingerprint presented for one session.
type Identity struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	WindowSize     string
}

var viewports = []struct{ w, h int }{
	{1920, 1080}, {1366, 768}, {1536, 864},
	{1440, 900}, {1280, 720},
}

// NewIdentity picks a user agent and a common desktop viewport at random.
func NewIdentity(rng *rand.Rand, userAgents []string) Identity {
	vp := viewports[rng.Intn(len(viewports))]
	id := Identity{
		ViewportWidth:  vp.w,
		ViewportHeight: vp.h,
		WindowSize:     fmt.Sprintf("%d,%d", vp.w, vp.h),
	}
	if len(userAgents) > 0 {
		id.UserAgent = userAgents[rng.Intn(len(userAgents))]
	}
	return id
}
