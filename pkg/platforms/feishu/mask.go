package feishu

// MaskMarker replaces the hidden middle of a masked value.
const MaskMarker = "***"

// MaskWebhookURL hides the token part of a webhook URL. URLs longer than 50
// characters keep 30+10, longer than 16 keep 10+6, anything else is fully masked.
func MaskWebhookURL(url string) string {
	if n := len([]rune(url)); n > 50 {
		return maskMiddle(url, 30, 10)
	} else if n > 16 {
		return maskMiddle(url, 10, 6)
	}
	return MaskMarker
}

// MaskSecret keeps 6+4 characters of secrets longer than 10.
func MaskSecret(secret string) string {
	if len([]rune(secret)) > 10 {
		return maskMiddle(secret, 6, 4)
	}
	return MaskMarker
}

// MaskSignature keeps 10+6 characters of signatures longer than 16.
func MaskSignature(sign string) string {
	if len([]rune(sign)) > 16 {
		return maskMiddle(sign, 10, 6)
	}
	return MaskMarker
}

func maskMiddle(s string, prefix, suffix int) string {
	r := []rune(s)
	return string(r[:prefix]) + MaskMarker + string(r[len(r)-suffix:])
}
