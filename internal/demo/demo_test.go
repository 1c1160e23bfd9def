package demo_test

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/next-trace/scg-mediator/internal/demo"
	"github.com/next-trace/scg-mediator/mediator"
	"github.com/next-trace/scg-mediator/registrar"
	"github.com/next-trace/scg-mediator/registry"
)

func TestDemoSources(t *testing.T) {
	var buf bytes.Buffer

	reg := registry.New()
	require.NoError(t, reg.Instance(reflect.TypeFor[*demo.Output](), &demo.Output{W: &buf}))

	_, err := registrar.RegisterTransient(reg, registrar.ByPrefix("demo."))
	require.NoError(t, err)

	m := mediator.New(reg)

	res, err := mediator.Send[string](t.Context(), m, demo.Echo{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", res)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, m.Publish(t.Context(), demo.Pinged{From: "test", At: at}))
	assert.Equal(t, "print: ping from test\naudit: ping from test at 2026-01-02T03:04:05Z\n", buf.String())
}

func TestDemoSources_WithoutOutput(t *testing.T) {
	reg, err := registrar.RegisterTransient(registry.New(), registrar.Explicit(demo.PingSource))
	require.NoError(t, err)

	require.NoError(t, mediator.New(reg).Publish(t.Context(), demo.Pinged{From: "quiet"}))
}

func TestDemoSources_Provided(t *testing.T) {
	srcs := registrar.Default.Sources()
	assert.Contains(t, srcs, demo.EchoSource)
	assert.Contains(t, srcs, demo.PingSource)
}
