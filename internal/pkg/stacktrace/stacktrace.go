// Package stacktrace trims goroutine dumps down to this module's frames.
package stacktrace

import "strings"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame in
// stack that points into an internal package.
func InternalPaths(stack []byte) []string {
	var paths []string
	for line := range strings.Lines(string(stack)) {
		line = strings.TrimSpace(line)
		_, rest, ok := strings.Cut(line, "/internal/")
		if !ok || !strings.Contains(rest, ".go:") {
			continue
		}
		if sp := strings.IndexByte(rest, ' '); sp != -1 {
			rest = rest[:sp]
		}
		paths = append(paths, "internal/"+rest)
	}
	return paths
}
