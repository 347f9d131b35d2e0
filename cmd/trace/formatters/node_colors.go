package formatters

import (
	"path"
	"strings"
)

// defaultFillColor is used for files outside the known module flavors.
const defaultFillColor = "white"

// fillColors groups extensions by module flavor, so a file keeps its color
// from one graph to the next.
var fillColors = map[string]string{
	".ts":  "lightblue",
	".mts": "lightblue",
	".cts": "lightblue",
	".tsx": "lightyellow",
	".js":  "khaki",
	".mjs": "khaki",
	".cjs": "khaki",
	".jsx": "peachpuff",
}

func fillColor(file string) string {
	if color, ok := fillColors[strings.ToLower(path.Ext(file))]; ok {
		return color
	}
	return defaultFillColor
}
