package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limbo111111/protopirate/subghz"
)

func TestApplyTimingOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Suzuki:\n  te_delta: 55\n"), 0o644))

	logger := log.NewWithOptions(os.Stderr, log.Options{})
	original := *subghz.TimingProfileFor("Suzuki")
	defer func() { *subghz.TimingProfileFor("Suzuki") = original }()

	require.NoError(t, applyTimingOverrides(path, logger))
	assert.Equal(t, uint32(55), subghz.TimingProfileFor("Suzuki").TEDelta)
}

func TestApplyTimingOverridesUnknownProtocolIsIgnoredNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("NotAProtocol:\n  te_delta: 10\n"), 0o644))

	logger := log.NewWithOptions(os.Stderr, log.Options{})
	assert.NoError(t, applyTimingOverrides(path, logger))
}

func TestOpenInputStdinSentinel(t *testing.T) {
	f, err := openInput("-")
	require.NoError(t, err)
	assert.Equal(t, os.Stdin, f)
}
