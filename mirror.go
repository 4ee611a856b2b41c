package pkgfetch

import "fmt"

// MirrorEntry is a single named mirror, with possibly distinct fetch and
// push URLs, following git's remote model.
type MirrorEntry struct {
	Name  string
	Fetch string
	Push  string
}

// pushURL returns the entry's push URL, defaulting to Fetch when Push was
// never set explicitly: a mirror with no distinct push URL behaves as if
// Push==Fetch.
func (e MirrorEntry) pushURL() string {
	if e.Push == "" {
		return e.Fetch
	}

	return e.Push
}

// MirrorSet is an ordered collection of mirrors. Order matters: it is the
// mirrors' priority order, so additions and removals are
// defined precisely rather than left to map iteration order.
type MirrorSet struct {
	entries []MirrorEntry
}

// NewMirrorSet returns an empty [MirrorSet].
func NewMirrorSet() *MirrorSet {
	return &MirrorSet{}
}

// Entries returns the mirrors in priority order. The returned slice must
// not be mutated by the caller.
func (m *MirrorSet) Entries() []MirrorEntry {
	return m.entries
}

// Add inserts entry at the front of the set (highest priority): the most
// recently added mirror wins. If a mirror with the same name already
// exists, it is replaced in place rather than duplicated.
func (m *MirrorSet) Add(entry MirrorEntry) {
	for i, existing := range m.entries {
		if existing.Name == entry.Name {
			m.entries[i] = entry

			return
		}
	}

	m.entries = append([]MirrorEntry{entry}, m.entries...)
}

// Remove deletes the mirror named name, reporting whether one was found.
func (m *MirrorSet) Remove(name string) bool {
	for i, existing := range m.entries {
		if existing.Name != name {
			continue
		}

		m.entries = append(m.entries[:i], m.entries[i+1:]...)

		return true
	}

	return false
}

// SetURL updates the URL of the mirror named name, reporting a
// human-readable summary of what changed: always both the old and new
// URL rather than a bare boolean, so callers can log it verbatim.
//
// When pushOnly is set, only Push is updated and Fetch is left
// untouched (the "--push" case: from A -> ua, set-url(A, ua2, --push)
// yields A -> {fetch: ua, push: ua2}). Otherwise both Fetch and Push are
// set to newURL, matching set-url's default of updating both ends.
func (m *MirrorSet) SetURL(name, newURL string, pushOnly bool) (changed string, err error) {
	for i, existing := range m.entries {
		if existing.Name != name {
			continue
		}

		var old string
		if pushOnly {
			old = existing.pushURL()
			m.entries[i].Push = newURL
		} else {
			old = existing.Fetch
			m.entries[i].Fetch = newURL
			m.entries[i].Push = newURL
		}

		if old == newURL {
			return "", nil
		}

		return fmt.Sprintf("Changed url for %s from %s to %s", name, old, newURL), nil
	}

	return "", fmt.Errorf("no mirror named %q: %w", name, ErrInvalidArgs)
}

// Get looks up the mirror named name.
func (m *MirrorSet) Get(name string) (MirrorEntry, bool) {
	for _, existing := range m.entries {
		if existing.Name == name {
			return existing, true
		}
	}

	return MirrorEntry{}, false
}
