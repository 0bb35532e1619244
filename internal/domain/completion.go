package domain

// Chat roles understood by completion backends.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one role-tagged message of a completion request.
type ChatMessage struct {
	Role    string
	Content string
}

// CompletionRequest describes a single text-completion call.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   *int
	Seed        *int
}

// Completion is the decoded first choice of a completion response.
type Completion struct {
	Text         string
	FinishReason string
}
