package provider

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"Food", "Dairy"}, SplitTags(" Food > > Dairy ", ">"))
	assert.Nil(t, SplitTags("", ","))
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://fallback", BaseURL("  ", "https://fallback"))
	assert.Equal(t, "http://local", BaseURL("http://local/", "https://fallback"))
}

func TestLimiterThrottles(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, Wait(ctx, nil, "none"))

	unlimited := NewLimiter(0)
	for i := 0; i < 10; i++ {
		require.NoError(t, Wait(ctx, unlimited, "unlimited"))
	}

	slow := NewLimiter(1)
	require.NoError(t, Wait(ctx, slow, "slow"))
	require.NoError(t, Wait(ctx, slow, "slow"))
	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	assert.Error(t, Wait(short, slow, "slow"), "burst exhausted")
}
