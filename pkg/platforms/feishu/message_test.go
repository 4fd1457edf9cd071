package feishu

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostMessage_WireFormat(t *testing.T) {
	msg := NewPostMessage("", "Deploy", "Build #42 succeeded").
		WithSignature("1700000000", "c2lnbg==")

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	expected := `{
		"timestamp": "1700000000",
		"sign": "c2lnbg==",
		"msg_type": "post",
		"content": {
			"post": {
				"zh_cn": {
					"title": "Deploy",
					"content": [[{"tag": "text", "text": "Build #42 succeeded"}]]
				}
			}
		}
	}`
	assert.JSONEq(t, expected, string(data))
}

func TestPostMessage_FieldOrder(t *testing.T) {
	data, err := json.Marshal(NewPostMessage("zh_cn", "t", "c").WithSignature("1", "s"))
	require.NoError(t, err)
	assert.Regexp(t, `^\{"timestamp":"1","sign":"s","msg_type":"post","content":`, string(data))
}

func TestPostMessage_Locale(t *testing.T) {
	msg := NewPostMessage("en_us", "Title", "Body")
	require.Contains(t, msg.Content.Post, "en_us")
	assert.NotContains(t, msg.Content.Post, "zh_cn")
	assert.Equal(t, "Title", msg.Content.Post["en_us"].Title)
}

func TestPostMessage_EscapesContent(t *testing.T) {
	msg := NewPostMessage("", `quote " and <tag>`, "line1\nline2")
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded PostMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, `quote " and <tag>`, decoded.Content.Post["zh_cn"].Title)
	assert.Equal(t, "line1\nline2", decoded.Content.Post["zh_cn"].Content[0][0].Text)
}

func TestPostMessage_LogViewOmitsSign(t *testing.T) {
	msg := NewPostMessage("", "t", "c").WithSignature("1700000000", "super-secret-sign")
	view, err := json.Marshal(msg.logView())
	require.NoError(t, err)
	assert.NotContains(t, string(view), "super-secret-sign")
	assert.NotContains(t, string(view), `"sign"`)
	assert.Contains(t, string(view), "1700000000")
}
