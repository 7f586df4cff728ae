// Package source resolves stored study notes into the source text the
// generation service works from.
//
// A Finder returns the documents behind a reference; Assemble joins them
// into one bounded block of text, each document headed by its title.
package source
