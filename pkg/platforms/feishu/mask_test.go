package feishu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskWebhookURL(t *testing.T) {
	long := "https://open.feishu.cn/open-apis/bot/v2/hook/0123456789abcdef0123456789"
	medium := "https://x.io/hook/abcd"

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "long keeps 30+10", input: long, expected: "https://open.feishu.cn/open-ap***0123456789"},
		{name: "medium keeps 10+6", input: medium, expected: "https://x.***k/abcd"},
		{name: "short fully masked", input: "http://a.b/c", expected: "***"},
		{name: "exactly 16 fully masked", input: strings.Repeat("a", 16), expected: "***"},
		{name: "exactly 50 uses short split", input: strings.Repeat("b", 50), expected: strings.Repeat("b", 10) + "***" + strings.Repeat("b", 6)},
		{name: "empty", input: "", expected: "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskWebhookURL(tt.input)
			assert.Equal(t, tt.expected, got)
			if tt.input != "" {
				assert.NotEqual(t, tt.input, got, "full value must never be returned")
			}
		})
	}
}

func TestMaskWebhookURL_HidesToken(t *testing.T) {
	token := "deadbeef-cafe-feed-face-0123456789ab"
	url := "https://open.feishu.cn/open-apis/bot/v2/hook/" + token
	assert.NotContains(t, MaskWebhookURL(url), token)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "gQURr6***0Jh1", MaskSecret("gQURr67BPOsTZlI7jBn0Jh1"))
	assert.Equal(t, "abcdef***7890", MaskSecret("abcdefXYZ1234567890"))
	assert.Equal(t, "***", MaskSecret("0123456789"))
	assert.Equal(t, "***", MaskSecret(""))
}

func TestMaskSignature(t *testing.T) {
	sign := "mbm4Y4oluIPQ00qlBIhX8vAZ0EKv3nw0LuTb91jPL84="
	assert.Equal(t, "mbm4Y4oluI***jPL84=", MaskSignature(sign))
	assert.Equal(t, "***", MaskSignature("short"))
}

func TestMask_MultibyteSafe(t *testing.T) {
	secret := "飞书机器人签名校验密钥测试"
	got := MaskSecret(secret)
	assert.Equal(t, "飞书机器人签***密钥测试", got)
}
