package flow

// Button is one selectable option on an outbound prompt. Exactly one of
// Code, URL or WebAppURL is set.
type Button struct {
	Label     string
	Code      string
	URL       string
	WebAppURL string
}

// Reply is the engine's only outbound artifact: a prompt plus its option set.
// The messaging transport owns the actual rendering.
type Reply struct {
	Text    string
	Buttons [][]Button

	// RequestContact asks the transport to offer a share-contact keyboard.
	RequestContact bool
	// RemoveKeyboard clears a previously offered reply keyboard.
	RemoveKeyboard bool
}

func textReply(text string) Reply {
	return Reply{Text: text}
}

func backRow(code string) []Button {
	return []Button{{Label: backLabel, Code: code}}
}
