package qline

// generateSuggestions refreshes the suggestion list from the host
// enumerator. Suggestions only exist when the cursor sits at the end
// of the buffer and no selection is active; anything else clears the
// list.
func (e *Editor) generateSuggestions() {
	e.suggestions.Clear()
	e.suggestionShown = false

	if e.completeFn == nil || e.selection != selInvalid || e.cursor != e.buf.GraphemeCount() {
		return
	}

	buf := e.buf.String()
	index := 0
	for {
		suffix, ok := e.completeFn(buf, e.completeRef, &index)
		if !ok {
			break
		}
		e.suggestions.Append(suffix)
	}
	if e.suggestions.Count() > 0 {
		e.suggestions.SetIndex(0)
	}
}

func (e *Editor) hasSuggestions() bool {
	return e.suggestions.Count() > 0
}

// currentSuggestion returns the suffix under the suggestion cursor.
func (e *Editor) currentSuggestion() (string, bool) {
	return e.suggestions.Current()
}

// advanceSuggestion cycles the suggestion cursor with wrap-around.
func (e *Editor) advanceSuggestion(delta int) {
	if !e.hasSuggestions() {
		return
	}
	e.suggestions.Advance(delta, true)
	e.dirty = true
}

// acceptSuggestion inserts the current suffix and drops the list.
func (e *Editor) acceptSuggestion() error {
	suffix, ok := e.currentSuggestion()
	if !ok {
		return nil
	}
	e.suggestions.Clear()
	e.suggestionShown = false
	if suffix == "" {
		return nil
	}
	return e.insert([]byte(suffix))
}

func (e *Editor) clearSuggestions() {
	e.suggestions.Clear()
	e.suggestionShown = false
}
