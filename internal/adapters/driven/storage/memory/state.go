package memory

// State is the process-wide UI state container. It is created once at the
// application root and handed to the services that own each store.
type State struct {
	Items    *ItemCache
	Messages *MessageStore
}

// NewState creates an empty state container.
func NewState() *State {
	return &State{
		Items:    NewItemCache(),
		Messages: NewMessageStore(),
	}
}
