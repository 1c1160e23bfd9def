package registrar_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	berr "github.com/next-trace/scg-mediator/contract/errors"
	cm "github.com/next-trace/scg-mediator/contract/mediator"
	"github.com/next-trace/scg-mediator/mediator"
	"github.com/next-trace/scg-mediator/registrar"
	"github.com/next-trace/scg-mediator/registry"
)

type echo struct{ Message string }

type echoHandler struct{}

func (*echoHandler) Handle(ctx context.Context, q echo) (string, error) { return q.Message, nil }

type pinged struct{}

var calls []string

type pingA struct{}

func (pingA) Handle(ctx context.Context, n pinged) error {
	calls = append(calls, "A")
	return nil
}

type pingB struct{}

func (pingB) Handle(ctx context.Context, n pinged) error {
	calls = append(calls, "B")
	return nil
}

func newInventory() (*registrar.Inventory, *registrar.Source, *registrar.Source) {
	inv := &registrar.Inventory{}

	app := registrar.NewSource("app.echo").
		Messages(mediator.RequestOf[echo, string]()).
		Add(registrar.Component[*echoHandler]())

	pings := registrar.NewSource("app.ping").
		Messages(mediator.NotificationOf[pinged]()).
		Add(registrar.Component[pingA](), registrar.Component[pingB]())

	inv.Add(app)
	inv.Add(pings)

	return inv, app, pings
}

func resolveMediator(t *testing.T, reg *registry.Registry) cm.Mediator {
	t.Helper()

	scope := reg.NewScope()
	t.Cleanup(func() { _ = scope.Close() })

	m, err := registry.Get[cm.Mediator](scope)
	require.NoError(t, err)

	return m
}

func TestRegisterTransient_AllLoaded(t *testing.T) {
	calls = nil
	inv, _, _ := newInventory()

	reg, err := registrar.RegisterTransient(registry.New(), registrar.AllLoaded(), registrar.WithInventory(inv))
	require.NoError(t, err)

	m := resolveMediator(t, reg)

	res, err := m.Send(t.Context(), echo{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", res)

	require.NoError(t, m.Publish(t.Context(), pinged{}))
	assert.Equal(t, []string{"A", "B"}, calls)
}

func TestRegister_ExplicitUsesInventoryContracts(t *testing.T) {
	inv, app, _ := newInventory()

	reg, err := registrar.RegisterScoped(registry.New(), registrar.Explicit(app), registrar.WithInventory(inv))
	require.NoError(t, err)

	m := resolveMediator(t, reg)

	_, err = m.Send(t.Context(), echo{})
	require.NoError(t, err)

	err = m.Publish(t.Context(), pinged{})
	require.ErrorIs(t, err, berr.ErrHandlerNotFound)
}

func TestRegister_ExplicitSourceOutsideInventory(t *testing.T) {
	calls = nil
	src := registrar.NewSource("adhoc").
		Messages(mediator.NotificationOf[pinged]()).
		Add(registrar.Component[pingB](), registrar.Component[pingA]())

	reg, err := registrar.RegisterTransient(registry.New(), registrar.Explicit(src), registrar.WithInventory(&registrar.Inventory{}))
	require.NoError(t, err)

	require.NoError(t, resolveMediator(t, reg).Publish(t.Context(), pinged{}))
	assert.Equal(t, []string{"B", "A"}, calls)
}

func TestRegister_ByPrefix(t *testing.T) {
	inv, _, _ := newInventory()

	reg, err := registrar.RegisterTransient(registry.New(), registrar.ByPrefix("app.ping"), registrar.WithInventory(inv))
	require.NoError(t, err)

	m := resolveMediator(t, reg)
	require.NoError(t, m.Publish(t.Context(), pinged{}))

	_, err = m.Send(t.Context(), echo{})
	require.ErrorIs(t, err, berr.ErrHandlerNotFound)
}

func TestRegister_ScansOnlyNamedSources(t *testing.T) {
	anon := registrar.NewSource("").
		Messages(mediator.RequestOf[echo, string]()).
		Add(registrar.Component[*echoHandler]())

	inv := &registrar.Inventory{}
	inv.Add(anon)

	for _, sel := range []registrar.Selector{registrar.AllLoaded(), registrar.ByPrefix("")} {
		t.Run(sel.String(), func(t *testing.T) {
			reg, err := registrar.RegisterTransient(registry.New(), sel, registrar.WithInventory(inv))
			require.NoError(t, err)

			_, err = resolveMediator(t, reg).Send(t.Context(), echo{})
			require.ErrorIs(t, err, berr.ErrHandlerNotFound)
		})
	}

	reg, err := registrar.RegisterTransient(registry.New(), registrar.Explicit(anon), registrar.WithInventory(inv))
	require.NoError(t, err)

	res, err := resolveMediator(t, reg).Send(t.Context(), echo{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", res)
}

func TestRegister_TwiceDuplicatesNotificationHandlers(t *testing.T) {
	calls = nil
	inv, _, pings := newInventory()
	reg := registry.New()

	_, err := registrar.RegisterTransient(reg, registrar.Explicit(pings), registrar.WithInventory(inv))
	require.NoError(t, err)
	_, err = registrar.RegisterTransient(reg, registrar.Explicit(pings), registrar.WithInventory(inv))
	require.NoError(t, err)

	require.NoError(t, resolveMediator(t, reg).Publish(t.Context(), pinged{}))
	assert.Equal(t, []string{"A", "B", "A", "B"}, calls)
}

func TestRegister_SkipsInterfaceAndUnmatchedComponents(t *testing.T) {
	src := registrar.NewSource("mixed").
		Messages(mediator.RequestOf[echo, string]()).
		Add(
			registrar.Component[cm.RequestHandler[echo, string]](),
			registrar.Component[pingA](),
			registrar.ComponentFunc(func(registry.Resolver) (*echoHandler, error) { return &echoHandler{}, nil }),
		)

	reg := registry.New()
	_, err := registrar.RegisterTransient(reg, registrar.Explicit(src), registrar.WithInventory(&registrar.Inventory{}))
	require.NoError(t, err)

	assert.Len(t, reg.Bindings(mediator.RequestOf[echo, string]().HandlerType()), 1)
	assert.False(t, reg.Has(mediator.NotificationOf[pinged]().HandlerType()))
}

func TestRegister_BindsMediatorUnderLifetime(t *testing.T) {
	inv, _, _ := newInventory()
	reg := registry.New()

	_, err := registrar.RegisterScoped(reg, registrar.AllLoaded(), registrar.WithInventory(inv),
		registrar.WithMediatorOptions(mediator.WithEmptyPublish()))
	require.NoError(t, err)

	bs := reg.Bindings(reflect.TypeFor[cm.Mediator]())
	require.Len(t, bs, 1)
	assert.Equal(t, registry.Scoped, bs[0].Lifetime)
	assert.Equal(t, reflect.TypeFor[*mediator.Mediator](), bs[0].Implementation)

	scope := reg.NewScope()
	t.Cleanup(func() { _ = scope.Close() })

	m1, err := registry.Get[cm.Mediator](scope)
	require.NoError(t, err)
	m2, err := registry.Get[cm.Mediator](scope)
	require.NoError(t, err)
	assert.Same(t, m1, m2)

	type silent struct{}
	require.NoError(t, m1.Publish(t.Context(), silent{}))
}

func TestRegister_InvalidArguments(t *testing.T) {
	_, err := registrar.RegisterTransient(registry.New(), registrar.Selector{})
	require.ErrorIs(t, err, berr.ErrInvalidSelector)

	_, err = registrar.RegisterTransient(registry.New(), registrar.Explicit(nil))
	require.ErrorIs(t, err, berr.ErrInvalidSelector)

	_, err = registrar.Register(registry.New(), registry.Lifetime(0), registrar.AllLoaded())
	require.ErrorIs(t, err, berr.ErrInvalidBinding)

	_, err = registrar.RegisterTransient(nil, registrar.AllLoaded())
	require.ErrorIs(t, err, berr.ErrInvalidBinding)
}

func TestRegister_SealedRegistry(t *testing.T) {
	inv, _, _ := newInventory()
	reg := registry.New()
	reg.Seal()

	_, err := registrar.RegisterTransient(reg, registrar.AllLoaded(), registrar.WithInventory(inv))
	require.ErrorIs(t, err, berr.ErrRegistrySealed)
}

func TestRegister_DefaultInventory(t *testing.T) {
	src := registrar.NewSource("registrar_test.default").
		Messages(mediator.RequestOf[echo, string]()).
		Add(registrar.Component[*echoHandler]())
	registrar.Provide(src)
	registrar.Provide(src)

	assert.Contains(t, registrar.Default.Sources(), src)

	reg, err := registrar.RegisterTransient(registry.New(), registrar.ByPrefix("registrar_test."))
	require.NoError(t, err)

	res, err := mediator.Send[string](t.Context(), resolveMediator(t, reg), echo{Message: "default"})
	require.NoError(t, err)
	assert.Equal(t, "default", res)
}
