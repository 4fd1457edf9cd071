package feishu

// Message types and defaults
const (
	MsgTypePost   = "post"
	TagText       = "text"
	DefaultLocale = "zh_cn"
)

// PostMessage is the signed webhook body for a rich-text ("post") message.
type PostMessage struct {
	Timestamp string      `json:"timestamp"`
	Sign      string      `json:"sign"`
	MsgType   string      `json:"msg_type"`
	Content   PostContent `json:"content"`
}

// PostContent holds one post body per locale.
type PostContent struct {
	Post map[string]PostBody `json:"post"`
}

// PostBody is a titled list of paragraphs, each a list of elements.
type PostBody struct {
	Title   string          `json:"title"`
	Content [][]PostElement `json:"content"`
}

// PostElement is a single inline element of a paragraph.
type PostElement struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

// NewPostMessage builds an unsigned post with one plain-text paragraph.
func NewPostMessage(locale, title, content string) *PostMessage {
	if locale == "" {
		locale = DefaultLocale
	}
	return &PostMessage{
		MsgType: MsgTypePost,
		Content: PostContent{
			Post: map[string]PostBody{
				locale: {
					Title:   title,
					Content: [][]PostElement{{{Tag: TagText, Text: content}}},
				},
			},
		},
	}
}

// WithSignature sets the signature fields and returns m.
func (m *PostMessage) WithSignature(timestamp, sign string) *PostMessage {
	m.Timestamp = timestamp
	m.Sign = sign
	return m
}

// logView is the message as it may appear in logs: the signature is left out.
func (m *PostMessage) logView() map[string]interface{} {
	return map[string]interface{}{
		"timestamp": m.Timestamp,
		"msg_type":  m.MsgType,
		"content":   m.Content,
	}
}
