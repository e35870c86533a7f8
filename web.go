package onerm

import "embed"

// WebFS holds the static assets served under /static/.
//
//go:embed web/static
var WebFS embed.FS
