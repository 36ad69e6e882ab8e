package webhook

import "testing"

func TestGroupAllowed(t *testing.T) {
	t.Run("empty list allows everything", func(t *testing.T) {
		h := New(nil, nil, nil)
		if !h.groupAllowed("g1") || !h.groupAllowed("") {
			t.Error("expected all sources to be allowed")
		}
	})

	t.Run("listed groups only", func(t *testing.T) {
		h := New(nil, nil, []string{"g1", "g2", ""})
		if !h.groupAllowed("g1") || !h.groupAllowed("g2") {
			t.Error("expected listed groups to be allowed")
		}
		if h.groupAllowed("g3") {
			t.Error("expected unlisted group to be blocked")
		}
		// Direct messages carry no group ID; a non-empty allow-list
		// blocks them too.
		if h.groupAllowed("") {
			t.Error("expected direct messages to be blocked")
		}
	})
}
