// Package pipeline orchestrates a mirror run as a sequence of steps.
//
// A run moves through login, crawl, link check, history persistence, and
// report output. Each phase is a Step; the Pipeline executes them in order
// against a shared Run, checking for cancellation between steps. Keeping
// the phases as separate steps lets commands assemble only what they need
// (the check command runs just the link check, the mirror command runs the
// whole sequence).
package pipeline
