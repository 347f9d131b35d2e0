package typescript

import (
	"path"
	"path/filepath"
	"strings"
)

var testFileMarkers = []string{".test.", ".spec."}

var testDirectorySegments = []string{"__test__", "__tests__"}

// IsTestFile reports whether the path is a test file by name (a .test. or
// .spec. infix) or by location (a __test__ or __tests__ directory).
func IsTestFile(filePath string) bool {
	normalized := filepath.ToSlash(filePath)
	fileName := path.Base(normalized)

	for _, marker := range testFileMarkers {
		if strings.Contains(fileName, marker) {
			return true
		}
	}

	for _, segment := range strings.Split(path.Dir(normalized), "/") {
		for _, testDir := range testDirectorySegments {
			if segment == testDir {
				return true
			}
		}
	}
	return false
}
