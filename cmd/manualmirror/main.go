// Package main provides the entry point for the manualmirror CLI.
//
// manualmirror logs into a vendor manual portal, crawls a scoped set of
// manual chapters, and saves them for offline use, either as flattened
// MHTML captures or as a navigable directory mirror.
//
// Usage:
//
//	manualmirror mirror --seeds seeds.yaml --output ./manuals
//	manualmirror check ./manuals
//	manualmirror convert ./captures
//
// See --help for all available options.
package main

// main is the entry point for manualmirror.
func main() {
	Execute()
}
