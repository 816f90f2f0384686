package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestMapGeminiError(t *testing.T) {
	err := mapGeminiError(genai.APIError{Code: 429, Message: "quota exceeded"})
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "gemini", pe.Provider)
	require.Equal(t, 429, pe.Status)
	require.Equal(t, "quota exceeded", pe.Message)
}

func TestMapGeminiErrorWrapped(t *testing.T) {
	wrapped := fmt.Errorf("embed: %w", genai.APIError{Code: 503, Message: "overloaded"})
	var pe *ProviderError
	require.ErrorAs(t, mapGeminiError(wrapped), &pe)
	require.Equal(t, 503, pe.Status)
}

func TestMapGeminiErrorPassThrough(t *testing.T) {
	require.NoError(t, mapGeminiError(nil))
	// non-API failures (network, deadline) stay as they are
	require.ErrorIs(t, mapGeminiError(context.DeadlineExceeded), context.DeadlineExceeded)
	require.False(t, IsProviderError(mapGeminiError(errBadThing)))
}

var errBadThing = fmt.Errorf("connection reset")
