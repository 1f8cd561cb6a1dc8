package chat

// Reduce folds one event into the transcript's last turn. When last is an
// open assistant turn the result replaces it (replace is true); otherwise
// the result is a new assistant turn to append. last is never modified.
//
// Rules, in order:
//   - response replaces the text outright; an absent response leaves it alone
//   - a resource-bearing event appends its resource unless the URL is
//     already attached (first seen wins) and points the status at the URL
//   - any other update becomes the status line
//   - done seals the turn and clears the status, whatever else is present
func Reduce(last *Turn, ev Event) (next Turn, replace bool) {
	if last != nil && last.Open() {
		next = last.Clone()
		replace = true
	} else {
		next = Turn{Role: RoleAssistant}
	}

	if ev.Response != nil {
		next.Text = *ev.Response
	}

	if ev.ResourceBearing() {
		if res, ok := ExtractResource(ev); ok {
			if !next.HasResource(res.URL) {
				next.Resources = append(next.Resources, res)
			}
			next.Status = res.URL
		}
	} else if ev.Update != "" {
		next.Status = ev.Update
	}

	if ev.Done {
		next.Sealed = true
		next.Status = ""
	}
	return next, replace
}

// StateOf reports the exchange state implied by the transcript's last turn.
func StateOf(last *Turn) State {
	switch {
	case last == nil || last.Role != RoleAssistant:
		return StateIdle
	case last.Sealed:
		return StateSealed
	default:
		return StateOpen
	}
}
