package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckVersion(t *testing.T) {
	require.Less(t, PrevVersion, Version)

	for _, from := range []int{PrevVersion, PrevVersion + 1, Version - 1} {
		require.NotPanics(t, func() { CheckVersion(from) }, from)
	}

	// Rejected versions are checked on the chain, messages are built by the
	// native StdLib contract.
}

func TestAppendVersion(t *testing.T) {
	require.Equal(t, []any{Version}, AppendVersion(nil))
	require.Equal(t, []any{"owner", 1, Version}, AppendVersion([]any{"owner", 1}))
}
