package constant

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleTool      = "tool"
	MessageRoleSystem    = "system"

	// DefaultChatTitle is used until the first user message derives a real title.
	DefaultChatTitle = "New Chat"

	// ChatTitleMaxLength caps the title derived from the first user message.
	ChatTitleMaxLength = 80
)

// AgentSystemPrompt is the fixed instruction given to the model on every turn.
const AgentSystemPrompt = `You are a helpful AI assistant with access to web search capabilities.

When users ask about current events, recent news, or anything requiring up-to-date information, use the web_search tool to find relevant results.

Format your responses in markdown when appropriate. Be concise and helpful. If using web search results, cite your sources.`
