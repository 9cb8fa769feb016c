package model

// NoticeLevel is the severity of a transient user-facing notice.
type NoticeLevel int

const (
	// NoticeInfo is an informational notice, e.g. while waking the backend.
	NoticeInfo NoticeLevel = iota

	// NoticeError is an error notice, dismissed by the next valid action.
	NoticeError
)

// Notice is a transient message for the respondent.
// MessageID refers to a localized message; an empty MessageID clears the
// notice currently shown.
type Notice struct {
	Level     NoticeLevel
	MessageID string
	Data      map[string]any
}

// ClearNotice returns the notice that removes whatever is shown.
func ClearNotice() Notice {
	return Notice{}
}

// IsClear reports whether n removes the current notice.
func (n Notice) IsClear() bool {
	return n.MessageID == ""
}
