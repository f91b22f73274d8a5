// Package emails holds the notification email templates, named
// <name>[_<lang>].html and <name>[_<lang>].txt.
package emails

import "embed"

//go:embed *.html *.txt
var FS embed.FS
