package cmd

import (
	"errors"
	"testing"

	"github.com/ComedicChimera/ratesfmt/logging"
	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, exitCode())

	logging.Initialize("silent")
	defer logging.Initialize("warn")

	logging.LogError("CLI Usage", errors.New("missing `--attrs`"))
	require.Equal(t, 1, exitCode())
}
