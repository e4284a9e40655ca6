package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	larnaverrors "github.com/standardbeagle/larnav/internal/errors"
)

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate_SingleViolationIsConfigError(t *testing.T) {
	cfg := Default()
	cfg.Scan.MaxFileSize = 0

	err := cfg.Validate()
	require.Error(t, err)

	var cfgErr *larnaverrors.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "scan.max_file_size", cfgErr.Field)
	assert.Contains(t, err.Error(), "must be positive")
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	cfg := Default()
	cfg.Scan.MaxFileSize = -1
	cfg.Engine.ClosedFileCacheSize = -5
	cfg.Resolution.Locales = nil

	err := cfg.Validate()
	require.Error(t, err)

	var multi *larnaverrors.MultiError
	require.True(t, errors.As(err, &multi))
	assert.Len(t, multi.Errors, 3)
	assert.Contains(t, err.Error(), "3 errors")

	// errors.As reaches each wrapped violation through Unwrap.
	var cfgErr *larnaverrors.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}
