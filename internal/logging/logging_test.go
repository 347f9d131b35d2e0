package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_VerboseLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	logger.Debug("unresolved specifier", "specifier", "./missing")

	assert.Contains(t, buf.String(), Prefix)
	assert.Contains(t, buf.String(), "unresolved specifier")
	assert.Contains(t, buf.String(), "./missing")
}

func TestNew_QuietSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Debug("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
