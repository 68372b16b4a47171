package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandLine(t *testing.T) {
	args, err := parseCommandLine(`apply 2 --dry-run`)
	require.NoError(t, err)
	assert.Equal(t, []string{"apply", "2", "--dry-run"}, args)

	args, err = parseCommandLine(`resolve --id "overlap:e1:2024-01-15" --severity high`)
	require.NoError(t, err)
	assert.Equal(t, []string{"resolve", "--id", "overlap:e1:2024-01-15", "--severity", "high"}, args)

	args, err = parseCommandLine(`seed --base-date '2024-01-15'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"seed", "--base-date", "2024-01-15"}, args)

	args, err = parseCommandLine("   ")
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestParseCommandLine_UnclosedQuote(t *testing.T) {
	_, err := parseCommandLine(`rollback "abc`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed quote")
}
