package storage

import (
	"path"
	"strings"
)

// relativeRef computes the reference that navigates from one output-relative
// file to another, e.g. from "user-manual/inputs/demand.html" to
// "_assets/static/site.css" -> "../../_assets/static/site.css".
func relativeRef(fromFile, toFile string) string {
	fromDir := path.Dir(fromFile)

	var from []string
	if fromDir != "." {
		from = strings.Split(fromDir, "/")
	}
	to := strings.Split(toFile, "/")

	common := 0
	for common < len(from) && common < len(to)-1 && from[common] == to[common] {
		common++
	}

	parts := make([]string, 0, len(from)-common+len(to)-common)
	for i := common; i < len(from); i++ {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)

	return strings.Join(parts, "/")
}
