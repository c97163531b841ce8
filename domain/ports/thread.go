package ports

// ThreadResetter clears conversation-scoped state when the active thread changes.
type ThreadResetter interface {
	// Reset atomically empties all shared state and binds it to threadID.
	Reset(threadID string) error
}

// ThreadSource reports the active conversation thread.
type ThreadSource interface {
	// Active returns the active thread id ("" before any thread is established).
	// It returns an error when the last transition failed to reset state.
	Active() (string, error)
}
