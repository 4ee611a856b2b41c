package pkgfetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorEntry_PushURL(t *testing.T) {
	assert.Equal(t, "https://fetch.example/repo", MirrorEntry{Fetch: "https://fetch.example/repo"}.pushURL())
	assert.Equal(t, "https://push.example/repo", MirrorEntry{
		Fetch: "https://fetch.example/repo",
		Push:  "https://push.example/repo",
	}.pushURL())
}

func TestMirrorSet_AddIsFrontInsertWithReplace(t *testing.T) {
	m := NewMirrorSet()
	m.Add(MirrorEntry{Name: "origin", Fetch: "https://a.example/repo"})
	m.Add(MirrorEntry{Name: "backup", Fetch: "https://b.example/repo"})

	entries := m.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "backup", entries[0].Name, "most recently added mirror has highest priority")
	assert.Equal(t, "origin", entries[1].Name)

	m.Add(MirrorEntry{Name: "origin", Fetch: "https://a2.example/repo"})
	entries = m.Entries()
	require.Len(t, entries, 2, "re-adding an existing name replaces in place rather than duplicating")
	assert.Equal(t, "https://a2.example/repo", entries[1].Fetch)
}

func TestMirrorSet_Remove(t *testing.T) {
	m := NewMirrorSet()
	m.Add(MirrorEntry{Name: "origin", Fetch: "https://a.example/repo"})

	assert.True(t, m.Remove("origin"))
	assert.False(t, m.Remove("origin"), "second removal finds nothing")
	assert.Empty(t, m.Entries())
}

func TestMirrorSet_Get(t *testing.T) {
	m := NewMirrorSet()
	m.Add(MirrorEntry{Name: "origin", Fetch: "https://a.example/repo"})

	entry, ok := m.Get("origin")
	require.True(t, ok)
	assert.Equal(t, "https://a.example/repo", entry.Fetch)

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestMirrorSet_SetURL(t *testing.T) {
	t.Run("unknown mirror errors", func(t *testing.T) {
		m := NewMirrorSet()
		_, err := m.SetURL("origin", "https://new.example/repo", false)
		require.ErrorIs(t, err, ErrInvalidArgs)
	})

	t.Run("reports a human readable change and collapses push", func(t *testing.T) {
		m := NewMirrorSet()
		m.Add(MirrorEntry{Name: "origin", Fetch: "https://old.example/repo"})

		changed, err := m.SetURL("origin", "https://new.example/repo", false)
		require.NoError(t, err)
		assert.Equal(t, "Changed url for origin from https://old.example/repo to https://new.example/repo", changed)

		entry, _ := m.Get("origin")
		assert.Equal(t, "https://new.example/repo", entry.Fetch)
		assert.Equal(t, "https://new.example/repo", entry.Push, "push follows fetch unless pushOnly")
	})

	t.Run("pushOnly leaves fetch untouched", func(t *testing.T) {
		m := NewMirrorSet()
		m.Add(MirrorEntry{Name: "origin", Fetch: "https://old.example/repo"})

		changed, err := m.SetURL("origin", "https://new-push.example/repo", true)
		require.NoError(t, err)
		assert.Equal(t, "Changed url for origin from https://old.example/repo to https://new-push.example/repo", changed)

		entry, _ := m.Get("origin")
		assert.Equal(t, "https://old.example/repo", entry.Fetch, "fetch is untouched by a push-only update")
		assert.Equal(t, "https://new-push.example/repo", entry.Push)
	})

	t.Run("setting the same url reports no change", func(t *testing.T) {
		m := NewMirrorSet()
		m.Add(MirrorEntry{Name: "origin", Fetch: "https://same.example/repo"})

		changed, err := m.SetURL("origin", "https://same.example/repo", false)
		require.NoError(t, err)
		assert.Empty(t, changed)
	})
}
