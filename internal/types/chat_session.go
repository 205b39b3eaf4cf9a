package types

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// ChatRequest carries the whole conversation; the server keeps no session state.
type ChatRequest struct {
	Preferences map[string]any `json:"preferences"`
	Itinerary   string         `json:"itinerary"`
	History     []ChatTurn     `json:"history"`
	Message     string         `json:"message" validate:"required"`
}

type ChatResponse struct {
	Reply   ChatTurn   `json:"reply"`
	History []ChatTurn `json:"history"`
}

// ChatRecord is one logged prompt/response pair, kept for training data.
type ChatRecord struct {
	UserPrompt       string           `json:"user_prompt"`
	AIResponse       string           `json:"ai_response"`
	ModelName        string           `json:"model_name"`
	Status           GenerationStatus `json:"response_status"`
	ProcessingTimeMs int64            `json:"processing_time"`
}
