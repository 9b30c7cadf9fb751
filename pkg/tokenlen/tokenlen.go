// Package tokenlen estimates the post-minification size of a CSS payload.
//
// The estimate drives the inline-vs-defer decision, so it must approximate
// what the stylesheet costs after minification, not its raw byte length:
// comments disappear entirely and runs of whitespace collapse to a single
// separator.
package tokenlen

import (
	"github.com/speedata/css/scanner"
)

// Estimate returns the estimated token length of the CSS content. Comments
// contribute nothing, each whitespace run contributes one byte, and every
// other token contributes its literal length.
func Estimate(content string) int {
	s := scanner.New(content)
	total := 0
	for {
		tok := s.Next()
		if tok.Type == scanner.EOF || tok.Type == scanner.Error {
			break
		}
		switch tok.Type {
		case scanner.Comment:
			// stripped by minification
		case scanner.S:
			total++
		default:
			total += len(tok.Value)
		}
	}
	return total
}
