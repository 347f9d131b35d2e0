package tsconfig

import "strings"

// ModuleResolution is the strategy used to turn a specifier into a file.
type ModuleResolution int

const (
	ResolutionClassic ModuleResolution = iota
	ResolutionNode10
	ResolutionNode16
	ResolutionNodeNext
	ResolutionBundler
)

func (m ModuleResolution) String() string {
	switch m {
	case ResolutionClassic:
		return "classic"
	case ResolutionNode10:
		return "node10"
	case ResolutionNode16:
		return "node16"
	case ResolutionNodeNext:
		return "nodenext"
	case ResolutionBundler:
		return "bundler"
	default:
		return "unknown"
	}
}

// ProbesDirectoryIndex reports whether a directory specifier may resolve to
// its index file. Classic resolution never does.
func (m ModuleResolution) ProbesDirectoryIndex() bool {
	return m != ResolutionClassic
}

func parseModuleResolution(value string) (ModuleResolution, bool) {
	switch strings.ToLower(value) {
	case "classic":
		return ResolutionClassic, true
	case "node", "node10":
		return ResolutionNode10, true
	case "node16":
		return ResolutionNode16, true
	case "nodenext":
		return ResolutionNodeNext, true
	case "bundler":
		return ResolutionBundler, true
	default:
		return ResolutionNode10, false
	}
}

// defaultModuleResolution mirrors the compiler default derived from "module".
func defaultModuleResolution(module string) ModuleResolution {
	switch strings.ToLower(module) {
	case "amd", "umd", "system", "es6", "es2015":
		return ResolutionClassic
	case "node16":
		return ResolutionNode16
	case "nodenext":
		return ResolutionNodeNext
	case "preserve":
		return ResolutionBundler
	default:
		return ResolutionNode10
	}
}
