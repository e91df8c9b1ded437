package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publish-automation/infrastructure/cache"
)

func TestPushedURLCache_NilClientPassesThrough(t *testing.T) {
	c := cache.NewPushedURLCache(nil)

	urls := []string{"https://site.test/posts/a/", "https://site.test/posts/b/"}
	out, err := c.Filter(context.Background(), urls)
	require.NoError(t, err)
	assert.Equal(t, urls, out)

	assert.NoError(t, c.MarkPushed(context.Background(), urls))
}

func TestPushedURLCache_EmptyInput(t *testing.T) {
	c := cache.NewPushedURLCache(nil)

	out, err := c.Filter(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	assert.NoError(t, c.MarkPushed(context.Background(), nil))
}
