package depgraph

import "strings"

// externalRoots are directory names whose contents are third-party modules.
var externalRoots = []string{"node_modules"}

// IsExternalPath reports whether a path lives under a third-party root.
func IsExternalPath(filePath string) bool {
	for _, segment := range strings.Split(filePath, "/") {
		for _, root := range externalRoots {
			if segment == root {
				return true
			}
		}
	}
	return false
}
