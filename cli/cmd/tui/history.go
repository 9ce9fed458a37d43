package tui

// edit records one value change made in the editor.
type edit struct {
	id     string
	before string
	after  string
}

// history is the undo stack of the editor. The oldest entries are dropped
// once it holds limit edits.
type history struct {
	entries []edit
	limit   int
}

const defaultHistoryLimit = 256

func newHistory(limit int) *history {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	return &history{limit: limit}
}

// push records e. Edits that did not change the value are ignored.
func (h *history) push(e edit) {
	if e.before == e.after {
		return
	}

	if len(h.entries) == h.limit {
		h.entries = append(h.entries[:0], h.entries[1:]...)
	}

	h.entries = append(h.entries, e)
}

// pop removes and returns the most recent edit.
func (h *history) pop() (edit, bool) {
	if len(h.entries) == 0 {
		return edit{}, false
	}

	e := h.entries[len(h.entries)-1]
	h.entries = h.entries[:len(h.entries)-1]

	return e, true
}

// Len returns the number of edits that can be undone.
func (h *history) Len() int { return len(h.entries) }
