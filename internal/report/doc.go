// Package report renders run results in multiple output formats.
//
// Three writers are provided: SimpleWriter for terminal display,
// JSONWriter for tool integration, and MarkdownWriter for documentation
// and sharing. MultiWriter fans a report out to several writers at once,
// which is how a run ends up both on the terminal and in a file.
package report
