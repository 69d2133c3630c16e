package chat

// Message is one turn of the conversation as the browser sends it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Context carries page metadata the relay interpolates into the system
// prompt. It is text only and never executed.
type Context struct {
	Page   string `json:"page,omitempty"`
	Role   string `json:"role,omitempty"`
	Locale string `json:"locale,omitempty"`
}

// Request is the relay's JSON body for both the authenticated and the public
// variant. SessionID is only ever set by the public widget.
type Request struct {
	Messages  []Message `json:"messages"`
	Context   *Context  `json:"context,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
}
