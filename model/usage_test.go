package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageTracker(t *testing.T) {
	inner := NewMockModel("tracked")
	tracked := TrackUsage(inner)

	assert.Equal(t, "tracked", tracked.Info().Name)
	assert.Zero(t, tracked.Usage().TotalTokens)

	_, err := GenerateText(context.Background(), tracked, Request{
		Contents: []Content{UserText("hello")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tracked.Usage().TotalTokens)

	_, err = GenerateText(context.Background(), tracked, Request{
		Contents: []Content{UserText("again")},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, tracked.Usage().TotalTokens)
}
