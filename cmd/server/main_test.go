package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.ElementsMatch(t, []string{"serve", "migrate"}, names)

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	require.NotNil(t, serve.Flags().Lookup("port"))
}

func TestCorsOrigins(t *testing.T) {
	require.Equal(t, "*", corsOrigins(nil))
	require.Equal(t, "http://a,http://b", corsOrigins([]string{"http://a", "http://b"}))
}
