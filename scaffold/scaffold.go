// Package scaffold provides the embedded starter-site files for the
// inkpress CLI. Files with a .tmpl suffix are executed as Go text
// templates at scaffold time; everything else is copied verbatim.
package scaffold

import "embed"

// Templates contains the starter-site tree.
//
//go:embed all:templates
var Templates embed.FS
