package host

import (
	"bytes"
	"encoding/json"
	"fmt"

	"formatlink/pkg/errors"
	"formatlink/pkg/linkfmt"
)

// Message keys.
const (
	KeyExecuteCopy             = "executeCopy"
	KeyExecuteCopyAllTabs      = "executeCopyAllTabs"
	KeyExecuteCopyPopup        = "executeCopyPopup"
	KeyExecuteCopyAllTabsPopup = "executeCopyAllTabsPopup"
	KeyPromptContent           = "promptContent"
	KeyNotifyOnCopy            = "notifyOnCopy"
)

// Message is one inbound request. Exactly one field is set.
type Message struct {
	ExecuteCopy             *linkfmt.CopyData     `json:"executeCopy,omitempty"`
	ExecuteCopyAllTabs      *linkfmt.TabsCopyData `json:"executeCopyAllTabs,omitempty"`
	ExecuteCopyPopup        *linkfmt.CopyData     `json:"executeCopyPopup,omitempty"`
	ExecuteCopyAllTabsPopup *linkfmt.TabsCopyData `json:"executeCopyAllTabsPopup,omitempty"`
	// PromptContent is [content, message].
	PromptContent []string `json:"promptContent,omitempty"`
	// NotifyOnCopy is a format title or the literal true.
	NotifyOnCopy json.RawMessage `json:"notifyOnCopy,omitempty"`
}

// Key returns the single key set on m.
func (m Message) Key() (string, error) {
	var keys []string
	if m.ExecuteCopy != nil {
		keys = append(keys, KeyExecuteCopy)
	}
	if m.ExecuteCopyAllTabs != nil {
		keys = append(keys, KeyExecuteCopyAllTabs)
	}
	if m.ExecuteCopyPopup != nil {
		keys = append(keys, KeyExecuteCopyPopup)
	}
	if m.ExecuteCopyAllTabsPopup != nil {
		keys = append(keys, KeyExecuteCopyAllTabsPopup)
	}
	if m.PromptContent != nil {
		keys = append(keys, KeyPromptContent)
	}
	if len(m.NotifyOnCopy) > 0 {
		keys = append(keys, KeyNotifyOnCopy)
	}

	switch len(keys) {
	case 0:
		return "", errors.ProtocolError("message has no known key")
	case 1:
		return keys[0], nil
	default:
		return "", errors.ProtocolError(fmt.Sprintf("message keys are mutually exclusive, got %v", keys))
	}
}

// notifyTitle decodes NotifyOnCopy. ok is false for the literal false.
func (m Message) notifyTitle() (title string, ok bool, err error) {
	raw := bytes.TrimSpace(m.NotifyOnCopy)
	switch string(raw) {
	case "true":
		return "", true, nil
	case "false", "null":
		return "", false, nil
	}
	if err := json.Unmarshal(raw, &title); err != nil {
		return "", false, errors.InvalidArgument(KeyNotifyOnCopy, "must be a format title or true")
	}
	return title, true, nil
}

func (m Message) prompt() (content, message string, err error) {
	switch len(m.PromptContent) {
	case 1:
		return m.PromptContent[0], "", nil
	case 2:
		return m.PromptContent[0], m.PromptContent[1], nil
	default:
		return "", "", errors.InvalidArgument(KeyPromptContent, "expected [content, message]")
	}
}

// Reply is the answer written back on the native messaging channel.
type Reply struct {
	Result      any    `json:"result,omitempty"`
	Error       string `json:"error,omitempty"`
	Code        int    `json:"code,omitempty"`
	CloseWindow bool   `json:"closeWindow,omitempty"`
}

// CopyResult is the result of the execute* messages.
type CopyResult struct {
	Text    string `json:"text"`
	MIME    string `json:"mime"`
	Outcome string `json:"outcome"`
}
