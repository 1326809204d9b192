package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"areas", "score", "serve", "runs"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

func TestAreasSubcommands(t *testing.T) {
	areas, _, err := rootCmd.Find([]string{"areas", "load"})
	require.NoError(t, err)
	assert.Equal(t, "load", areas.Name())
}

func TestScoreFlags(t *testing.T) {
	for _, flag := range []string{"weights", "out", "no-store"} {
		assert.NotNil(t, scoreCmd.Flags().Lookup(flag), "missing --%s", flag)
	}
}
