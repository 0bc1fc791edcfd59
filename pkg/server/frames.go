package server

// Inbound message types.
const (
	MessageNavigate = "navigate"
)

// Outbound frame types.
const (
	FrameRender   = "render"
	FrameRedirect = "redirect"
	FrameNotFound = "notfound"
	FrameError    = "error"
)

// Error codes carried by error frames.
const (
	ErrorCodeInvalid   = "invalid"
	ErrorCodeForbidden = "forbidden"
	ErrorCodeInternal  = "internal"
)

// ClientMessage is a message from the browser.
type ClientMessage struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
}

// Frame is a message to the browser.
type Frame struct {
	Type    string `json:"type"`
	Seq     uint64 `json:"seq,omitempty"`
	Path    string `json:"path,omitempty"`
	HTML    string `json:"html,omitempty"`
	To      string `json:"to,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
