// Package csp builds Content-Security-Policy headers and applies them per path.
package csp

import "strings"

// directiveOrder fixes the order directives appear in the header.
var directiveOrder = []string{
	"default-src",
	"script-src",
	"style-src",
	"img-src",
	"font-src",
	"connect-src",
	"frame-ancestors",
	"form-action",
	"base-uri",
	"object-src",
}

// Policy is a set of CSP directives. Setters replace the sources of a
// directive and return the policy for chaining.
type Policy struct {
	directives map[string][]string
}

// NewPolicy returns an empty policy.
func NewPolicy() *Policy {
	return &Policy{directives: make(map[string][]string)}
}

func (p *Policy) set(directive string, sources []string) *Policy {
	p.directives[directive] = sources
	return p
}

// DefaultSrc sets default-src, the fallback for every fetch directive.
func (p *Policy) DefaultSrc(sources ...string) *Policy { return p.set("default-src", sources) }

// ScriptSrc sets script-src.
func (p *Policy) ScriptSrc(sources ...string) *Policy { return p.set("script-src", sources) }

// StyleSrc sets style-src.
func (p *Policy) StyleSrc(sources ...string) *Policy { return p.set("style-src", sources) }

// ImgSrc sets img-src.
func (p *Policy) ImgSrc(sources ...string) *Policy { return p.set("img-src", sources) }

// FontSrc sets font-src.
func (p *Policy) FontSrc(sources ...string) *Policy { return p.set("font-src", sources) }

// ConnectSrc sets connect-src.
func (p *Policy) ConnectSrc(sources ...string) *Policy { return p.set("connect-src", sources) }

// FrameAncestors sets frame-ancestors; "'none'" forbids framing.
func (p *Policy) FrameAncestors(sources ...string) *Policy { return p.set("frame-ancestors", sources) }

// FormAction sets form-action.
func (p *Policy) FormAction(sources ...string) *Policy { return p.set("form-action", sources) }

// BaseURI sets base-uri.
func (p *Policy) BaseURI(sources ...string) *Policy { return p.set("base-uri", sources) }

// ObjectSrc sets object-src.
func (p *Policy) ObjectSrc(sources ...string) *Policy { return p.set("object-src", sources) }

// String renders the header value. Directives without sources are omitted.
func (p *Policy) String() string {
	parts := make([]string, 0, len(p.directives))
	for _, d := range directiveOrder {
		if sources := p.directives[d]; len(sources) > 0 {
			parts = append(parts, d+" "+strings.Join(sources, " "))
		}
	}
	return strings.Join(parts, "; ")
}

// StrictPolicy suits JSON endpoints that never serve HTML.
func StrictPolicy() *Policy {
	return NewPolicy().
		DefaultSrc("'none'").
		ConnectSrc("'self'").
		FrameAncestors("'none'").
		BaseURI("'self'").
		FormAction("'self'")
}

// SwaggerUIPolicy allows the inline bootstrap script and the CDN assets Swagger UI loads.
func SwaggerUIPolicy() *Policy {
	return NewPolicy().
		DefaultSrc("'self'").
		ScriptSrc("'self'", "'unsafe-inline'", "https://cdn.jsdelivr.net").
		StyleSrc("'self'", "'unsafe-inline'", "https://cdn.jsdelivr.net").
		ImgSrc("'self'", "data:", "https:").
		FontSrc("'self'", "data:").
		ConnectSrc("'self'", "blob:").
		FrameAncestors("'none'").
		BaseURI("'self'").
		FormAction("'self'").
		ObjectSrc("'none'")
}
