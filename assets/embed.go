// Package assets embeds the default word lists so the server runs without
// any files configured.
package assets

import (
	"embed"
	"io"
)

// Names of the embedded lists.
const (
	Answers = "answers.txt"
	Allowed = "allowed.txt"
)

//go:embed allowed.txt answers.txt
var FS embed.FS

// Open returns a reader over one of the embedded lists.
func Open(name string) (io.ReadCloser, error) {
	return FS.Open(name)
}
