package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndComponentField(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Output: &buf, Level: "debug"}))
	defer func() { _ = Init(Options{Level: "info"}) }()

	log := WithComponent("signer")
	log.Debugf("signed %d headers", 3)

	out := buf.String()
	assert.Contains(t, out, "component=signer")
	assert.Contains(t, out, "signed 3 headers")
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Output: &buf, Level: "warn"}))
	defer func() { _ = Init(Options{Level: "info"}) }()

	log := WithComponent("retry")
	log.Infof("dropped")
	log.Warnf("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestInitInvalidLevel(t *testing.T) {
	assert.Error(t, Init(Options{Level: "shouty"}))
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Output: &buf, Level: "info"}))

	log := WithComponent("pipeline").WithFields(Fields{"attempt": 2})
	log.Infof("retrying")

	out := buf.String()
	assert.Contains(t, out, "attempt=2")
	assert.Contains(t, out, "component=pipeline")

	WithComponent("pipeline").WithError(errors.New("boom")).Errorf("failed")
	assert.Contains(t, buf.String(), "error=boom")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Init(Options{Output: &buf, Level: "info", JSONFormat: true}))
	defer func() { _ = Init(Options{Level: "info"}) }()

	WithComponent("x").Infof("hello")
	line := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(line, "{"), "expected JSON record, got %q", line)
}

func TestDiscardLoggerIsSilent(t *testing.T) {
	Discard().Errorf("nothing happens")
}
