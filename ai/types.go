package ai

// Message roles as they appear in persisted dialog records and in chat
// model requests.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single dialog turn passed to a ChatModel.
type Message struct {
	// Role is RoleUser or RoleAssistant.
	Role string

	// Content is the text of the turn.
	Content string
}
