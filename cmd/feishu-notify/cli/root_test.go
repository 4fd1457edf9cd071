package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/feishu-notifier/pkg/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvWebhookURL, config.EnvSecret, config.EnvTimeout, config.EnvLocale,
		config.EnvHistoryBackend, config.EnvHistoryRedis, config.EnvOTLPEndpoint,
		config.EnvLogLevel, EnvConfigFile,
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

// run executes the root command and returns stdout, the log output and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	cmd := newRootCommand(viper.New(), &logs)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), logs.String(), err
}

func feishuServer(t *testing.T, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestSignCommand(t *testing.T) {
	clearEnv(t)
	args := []string{"sign", "--secret", "test-secret", "--timestamp", "1700000000"}

	first, _, err := run(t, args...)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"timestamp": "1700000000",
		"sign": "mbm4Y4oluIPQ00qlBIhX8vAZ0EKv3nw0LuTb91jPL84=",
		"has_secret": true
	}`, first)

	second, _, err := run(t, args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSignCommand_Mask(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvSecret, "test-secret")

	out, _, err := run(t, "sign", "--timestamp", "1700000000", "--mask")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"timestamp": "1700000000",
		"sign": "mbm4Y4oluI***jPL84=",
		"has_secret": true,
		"webhook": "***",
		"secret": "test-s***cret"
	}`, out)
	assert.NotContains(t, out, "test-secret")
}

func TestSendCommand(t *testing.T) {
	clearEnv(t)
	srv, hits := feishuServer(t, `{"code":0,"msg":"success"}`)

	out, logs, err := run(t, "send",
		"--webhook-url", srv.URL,
		"--secret", "test-secret",
		"--title", "Deploy",
		"--content", "Build #42 succeeded")

	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"msg":"success"}`, out)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
	assert.Contains(t, logs, "Feishu notification sent")
	assert.NotContains(t, logs, "test-secret")
}

func TestSendCommand_FromEnvironment(t *testing.T) {
	clearEnv(t)
	srv, hits := feishuServer(t, `{"code":0,"msg":"success"}`)
	t.Setenv(config.EnvWebhookURL, srv.URL)
	t.Setenv(config.EnvSecret, "env-secret")

	out, _, err := run(t, "send", "--title", "Deploy")
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"msg":"success"}`, out)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
}

func TestSendCommand_MissingWebhook(t *testing.T) {
	clearEnv(t)

	out, _, err := run(t, "send", "--title", "Deploy", "--content", "Build #42 succeeded")
	require.Error(t, err)
	assert.JSONEq(t, `{"error":"webhook not configured"}`, out)
}

func TestSendCommand_UnusableWebhook(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvWebhookURL, "open.feishu.cn/open-apis/bot/v2/hook/x")

	out, _, err := run(t, "send", "--title", "Deploy")
	require.Error(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result, 1)
	assert.Contains(t, result["error"], "unsupported protocol scheme")
}

func TestSendCommand_Rejected(t *testing.T) {
	clearEnv(t)
	body := `{"code":19021,"msg":"sign match fail or timestamp is not within one hour from current time"}`
	srv, _ := feishuServer(t, body)

	out, _, err := run(t, "send", "--webhook-url", srv.URL, "--title", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "19021")
	assert.JSONEq(t, body, out)
}

func TestSendCommand_RequiresTitle(t *testing.T) {
	clearEnv(t)
	_, _, err := run(t, "send", "--content", "c")
	assert.Error(t, err)
}

func TestSendCommand_ConfigFile(t *testing.T) {
	clearEnv(t)
	fromFile, fileHits := feishuServer(t, `{"code":0,"msg":"file"}`)
	fromFlag, flagHits := feishuServer(t, `{"code":0,"msg":"flag"}`)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feishu:\n  webhook_url: "+fromFile.URL+"\n  secret: file-secret\nlogger:\n  format: json\n"), 0o600))

	out, logs, err := run(t, "send", "--config", path, "--title", "t")
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"msg":"file"}`, out)
	assert.Contains(t, logs, `"msg":"Feishu notification sent"`)

	out, _, err = run(t, "send", "--config", path, "--webhook-url", fromFlag.URL, "--title", "t")
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"msg":"flag"}`, out)

	assert.EqualValues(t, 1, atomic.LoadInt32(fileHits))
	assert.EqualValues(t, 1, atomic.LoadInt32(flagHits))
}

func TestRootCommand_InvalidFlags(t *testing.T) {
	clearEnv(t)

	_, _, err := run(t, "sign", "--timeout", "soon")
	assert.Error(t, err)

	_, _, err = run(t, "sign", "--locale", " ")
	assert.Error(t, err)
}

func TestHistoryCommand_RequiresRedis(t *testing.T) {
	clearEnv(t)
	_, _, err := run(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis")
}
