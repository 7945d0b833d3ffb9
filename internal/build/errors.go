package build

import "errors"

// Sentinel errors classifying invocation level failures. They are always
// wrapped with context at the call site.
var (
	ErrDiscovery = errors.New("pagesmith: source discovery error")
	ErrNoRender  = errors.New("pagesmith: context was created without templates")
)
