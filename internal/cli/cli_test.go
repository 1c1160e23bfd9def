package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/next-trace/scg-mediator/adapters/inmemory"
	berr "github.com/next-trace/scg-mediator/contract/errors"
	cm "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/internal/config"
	"github.com/next-trace/scg-mediator/internal/demo"
)

func run(t *testing.T, a *app, args ...string) (string, string, error) {
	t.Helper()

	color.NoColor = true

	var out, errOut bytes.Buffer

	cmd := newRootCommand(a)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())

	return out.String(), errOut.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mediator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestSendEcho(t *testing.T) {
	out, _, err := run(t, &app{}, "send", "echo", "--message", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestSendEcho_RequiresMessage(t *testing.T) {
	_, _, err := run(t, &app{}, "send", "echo")
	require.Error(t, err)
}

func TestPublishPing(t *testing.T) {
	out, _, err := run(t, &app{}, "publish", "ping", "--from", "ops")
	require.NoError(t, err)
	assert.Contains(t, out, "print: ping from ops\naudit: ping from ops at ")
}

func TestPublishPing_SourcesRestricted(t *testing.T) {
	path := writeConfig(t, "sources: [demo.echo]\n")

	_, _, err := run(t, &app{}, "--config", path, "publish", "ping")
	require.ErrorIs(t, err, berr.ErrHandlerNotFound)

	allow := writeConfig(t, "sources: [demo.echo]\npublish:\n  allow_empty: true\n")

	out, _, err := run(t, &app{}, "--config", allow, "publish", "ping")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPublishPing_Forwards(t *testing.T) {
	path := writeConfig(t, "forward:\n  topic: audit\n  nats:\n    url: nats://localhost:4222\n")
	fw := inmemory.New()
	dialed := ""

	a := &app{forwarder: func(cfg config.ForwardConfig) (cm.Forwarder, func(), error) {
		dialed = cfg.Broker()
		return fw, func() {}, nil
	}}

	_, _, err := run(t, a, "--config", path, "publish", "ping", "--from", "ops")
	require.NoError(t, err)
	assert.Equal(t, "nats", dialed)

	recs := fw.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "audit", recs[0].Subject)

	n, ok := recs[0].Notification.(demo.Pinged)
	require.True(t, ok)
	assert.Equal(t, "ops", n.From)
}

func TestVerboseLogsDispatch(t *testing.T) {
	_, logs, err := run(t, &app{}, "-v", "send", "echo", "-m", "x")
	require.NoError(t, err)
	assert.Contains(t, logs, "mediator send")
	assert.Contains(t, logs, "registrar bound")
}

func TestSources(t *testing.T) {
	out, _, err := run(t, &app{}, "sources")
	require.NoError(t, err)
	assert.Contains(t, out, "demo.echo")
	assert.Contains(t, out, "request demo.Echo -> string")
	assert.Contains(t, out, "notification demo.Pinged")

	out, _, err = run(t, &app{}, "sources", "--prefix", "demo.p")
	require.NoError(t, err)
	assert.Contains(t, out, "demo.ping")
	assert.NotContains(t, out, "demo.echo")

	out, _, err = run(t, &app{}, "sources", "--prefix", "nothing")
	require.NoError(t, err)
	assert.Equal(t, "no sources\n", out)
}
