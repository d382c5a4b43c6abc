package bot

// MessageSender delivers one message to one chat user. The user id is
// the opaque chat identity used as subscription key.
type MessageSender interface {
	Send(userID string, text string) error
}

// RefreshTrigger starts an off-cycle pipeline run. It reports false
// when a run is already in progress and the trigger was coalesced.
type RefreshTrigger interface {
	TriggerAsync() bool
}
