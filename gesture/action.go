package gesture

// ToAction maps a gesture event to the shell action it requests.
// Only completed edge swipe ends, taps and long presses produce an action.
func ToAction(event Event) Action {
	switch event.Type {
	case TypeEdgeSwipeEnd:
		if !event.Completed {
			return ActionNone
		}

		switch event.Edge {
		case EdgeBottom:
			// short swipe up raises the keyboard, a long one goes home
			if event.IsLong {
				return ActionGoHome
			}
			return ActionShowKeyboard
		case EdgeTop:
			return ActionCloseApp
		case EdgeLeft:
			return ActionQuickSettings
		case EdgeRight:
			return ActionAppSwitcher
		}
		return ActionNone

	case TypeTap:
		return ActionTap

	case TypeLongPress:
		return ActionLongPress
	}

	return ActionNone
}
