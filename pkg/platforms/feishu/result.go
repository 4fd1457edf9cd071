package feishu

import (
	"encoding/json"
	"math"
	"net/http"
	"time"

	"github.com/kart-io/feishu-notifier/pkg/errors"
)

// Result is the outcome of one Send. Exactly one of Response and Err is set:
// Response holds the decoded remote body, Err a local failure.
type Result struct {
	Response   map[string]interface{}
	StatusCode int
	// Raw is the response body as received, when one was read.
	Raw       string
	Err       error
	Timestamp string
	Duration  time.Duration
}

// OK reports HTTP 200 with a top-level code of 0.
func (r *Result) OK() bool {
	if r.Err != nil || r.StatusCode != http.StatusOK {
		return false
	}
	code, ok := r.Code()
	return ok && code == 0
}

// Code returns the remote "code" field, if present and integral.
func (r *Result) Code() (int, bool) {
	switch v := r.Response["code"].(type) {
	case float64:
		return integral(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case int:
		return v, true
	default:
		return 0, false
	}
}

func integral(f float64) (int, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// Msg returns the remote "msg" field, or "".
func (r *Result) Msg() string {
	msg, _ := r.Response["msg"].(string)
	return msg
}

// Map returns the remote body unchanged, or {"error": "<message>"} on a
// local failure.
func (r *Result) Map() map[string]interface{} {
	if r.Err != nil {
		return map[string]interface{}{"error": errors.GetErrorMessage(r.Err)}
	}
	return r.Response
}

// AsError converts any non-OK outcome into an error.
func (r *Result) AsError() error {
	if r.Err != nil {
		return r.Err
	}
	if r.OK() {
		return nil
	}
	code, _ := r.Code()
	return errors.Newf(errors.ErrPlatformRejected, "status %d, code %d: %s", r.StatusCode, code, r.Msg()).
		WithPlatform(PlatformName).
		WithMetadata("status_code", r.StatusCode).
		WithMetadata("code", code)
}

// errorType names the failure class for metrics.
func (r *Result) errorType() string {
	if r.Err != nil {
		return errors.GetCategory(errors.GetErrorCode(r.Err))
	}
	return "rejected"
}
