package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCache_ReplaceSwapsContentsAtomically(t *testing.T) {
	c := NewCache()
	c.Replace([]*Job{{JobName: "docs"}, {JobName: "support"}})
	require.Equal(t, 2, c.Len())

	job, ok := c.Get("docs")
	require.True(t, ok)
	require.Equal(t, "docs", job.JobName)

	c.Replace([]*Job{{JobName: "support"}})
	require.Equal(t, 1, c.Len())
	_, ok = c.Get("docs")
	require.False(t, ok)
}

func TestCache_PutAndRemove(t *testing.T) {
	c := NewCache()
	c.Put(&Job{JobName: "docs"})

	job, ok := c.Get("docs")
	require.True(t, ok)
	require.Equal(t, "docs", job.JobName)

	c.Remove("docs")
	_, ok = c.Get("docs")
	require.False(t, ok)
}

func TestCache_AllReturnsSnapshot(t *testing.T) {
	c := NewCache()
	c.Replace([]*Job{{JobName: "a"}, {JobName: "b"}})

	all := c.All()
	require.Len(t, all, 2)
}

func TestCache_GetMissingReturnsFalse(t *testing.T) {
	c := NewCache()
	_, ok := c.Get("missing")
	require.False(t, ok)
}
