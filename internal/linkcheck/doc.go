// Package linkcheck validates that a mirrored site navigates offline.
//
// It walks every HTML file under the output directory, resolves each
// relative link and asset reference against the file's location, and
// reports references that do not land on a file in the mirror. External
// links are ignored: only offline navigation is being validated.
package linkcheck
