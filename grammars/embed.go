// Package grammars ships the shorthand grammars with the binary
package grammars

import "embed"

// FS holds every grammar file
//
//go:embed *.ebnf
var FS embed.FS
