package models

// ConversationState is the per-user position in the matchmaking dialogue.
type ConversationState string

const (
	StateDefault                       ConversationState = "DEFAULT"
	StateAwaitingPartnerInformation    ConversationState = "AWAITING_PARTNER_INFORMATION"
	StateWaitingForPartner             ConversationState = "WAITING_FOR_PARTNER"
	StateWaitingForConfirmation        ConversationState = "WAITING_FOR_CONFIRMATION"
	StateWaitingForConversationToStart ConversationState = "WAITING_FOR_CONVERSATION_TO_START"
	StateConnected                     ConversationState = "CONNECTED"
)

// ConversationStates lists every defined state.
var ConversationStates = []ConversationState{
	StateDefault,
	StateAwaitingPartnerInformation,
	StateWaitingForPartner,
	StateWaitingForConfirmation,
	StateWaitingForConversationToStart,
	StateConnected,
}

// Valid reports whether s is one of the defined states.
func (s ConversationState) Valid() bool {
	for _, known := range ConversationStates {
		if s == known {
			return true
		}
	}
	return false
}
