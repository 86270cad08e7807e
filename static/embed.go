// Package static holds files compiled into the web binary.
package static

import "embed"

//go:embed usage.md
var FS embed.FS
