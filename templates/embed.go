package templates

import "embed"

// FS contains bundled discovery templates shipped with the binary.
//
//go:embed *.yaml
var FS embed.FS
