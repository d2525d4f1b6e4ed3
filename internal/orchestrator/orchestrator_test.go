package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/internal/api"
	"strata/internal/dependency"
	"strata/internal/services"
)

// journal records lifecycle hook calls across components
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(entry string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type recordingComponent struct {
	*services.BaseComponent
	journal     *journal
	initErr     error
	shutdownErr error
}

func (c *recordingComponent) Initialize(ctx context.Context) error {
	c.journal.add("init " + c.Key().String())
	return c.initErr
}

func (c *recordingComponent) Shutdown(ctx context.Context) error {
	c.journal.add("stop " + c.Key().String())
	return c.shutdownErr
}

type testEnv struct {
	orch    *Orchestrator
	journal *journal
	reg     *prometheus.Registry
}

// newTestEnv registers a constructor for every key.  Keys in initErrs or
// shutdownErrs get components whose hooks fail with the given error.
func newTestEnv(t *testing.T, keys []dependency.ComponentKey, initErrs, shutdownErrs map[dependency.ComponentKey]error) *testEnv {
	t.Helper()
	j := &journal{}
	factory := services.NewFactory()
	for _, key := range keys {
		require.NoError(t, factory.Register(key, func(key dependency.ComponentKey) (services.Component, error) {
			return &recordingComponent{
				BaseComponent: services.NewBaseComponent(key),
				journal:       j,
				initErr:       initErrs[key],
				shutdownErr:   shutdownErrs[key],
			}, nil
		}))
	}

	reg := prometheus.NewRegistry()
	orch, err := New(Config{Factory: factory, Metrics: reg})
	require.NoError(t, err)
	return &testEnv{orch: orch, journal: j, reg: reg}
}

func register(t *testing.T, orch *Orchestrator, key dependency.ComponentKey, deps ...dependency.DependencySpec) {
	t.Helper()
	require.NoError(t, orch.Register(dependency.ComponentMetadata{Key: key, Dependencies: deps}))
}

func requires(key dependency.ComponentKey) dependency.DependencySpec {
	return dependency.DependencySpec{Type: key.Type, Provider: key.Provider, Kind: dependency.KindRequired}
}

func optional(key dependency.ComponentKey) dependency.DependencySpec {
	return dependency.DependencySpec{Type: key.Type, Provider: key.Provider, Kind: dependency.KindOptional}
}

func TestNew(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err, "factory is required")

	orch, err := New(Config{Factory: services.NewFactory()})
	require.NoError(t, err)
	assert.Nil(t, orch.metrics)
	assert.Empty(t, orch.Components())
}

func TestOrchestrator_Register(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	register(t, env.orch, chatOpenAI, requires(cacheRedis), optional(telemetryOtel))
	register(t, env.orch, cacheRedis)

	assert.Equal(t, []dependency.ComponentKey{cacheRedis, chatOpenAI}, env.orch.Components())
	assert.Len(t, env.orch.DirectDependencies(chatOpenAI), 2)

	md, ok := env.orch.Metadata(chatOpenAI)
	require.True(t, ok)
	assert.Len(t, md.Dependencies, 2)

	err := env.orch.Register(dependency.ComponentMetadata{Key: dependency.NewKey("llm", "")})
	assert.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(env.orch.metrics.registeredComponent))
}

func TestOrchestrator_Orders(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)
	register(t, env.orch, chatOpenAI, requires(cacheRedis))
	register(t, env.orch, cacheRedis, requires(secretsVault))

	initOrder, err := env.orch.InitializationOrder()
	require.NoError(t, err)
	assert.Equal(t, []dependency.ComponentKey{secretsVault, cacheRedis, chatOpenAI}, initOrder)

	shutdownOrder, err := env.orch.ShutdownOrder()
	require.NoError(t, err)
	assert.Equal(t, []dependency.ComponentKey{chatOpenAI, cacheRedis, secretsVault}, shutdownOrder)
}

func TestOrchestrator_VerifyDependencies(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)
	register(t, env.orch, chatOpenAI, requires(cacheRedis), optional(telemetryOtel))

	available := dependency.NewKeySet(chatOpenAI)
	assert.Equal(t, []dependency.ComponentKey{cacheRedis}, env.orch.MissingDependencies(chatOpenAI, available))
	assert.Equal(t, map[dependency.ComponentKey][]dependency.ComponentKey{
		chatOpenAI: {cacheRedis},
	}, env.orch.VerifyDependencies(available))
	assert.Empty(t, env.orch.VerifyVersions())
}

func TestOrchestrator_StartAllAndStopAll(t *testing.T) {
	keys := []dependency.ComponentKey{chatOpenAI, cacheRedis, secretsVault, telemetryOtel}
	env := newTestEnv(t, keys, nil, nil)
	register(t, env.orch, chatOpenAI, requires(cacheRedis), optional(telemetryOtel))
	register(t, env.orch, cacheRedis, requires(secretsVault))
	register(t, env.orch, secretsVault)

	require.NoError(t, env.orch.StartAll(context.Background()))

	entries := env.journal.list()
	require.Len(t, entries, 4)
	// Each component is initialized after everything it depends on
	assert.Less(t, indexOf(entries, "init secrets/vault"), indexOf(entries, "init cache/redis"))
	assert.Less(t, indexOf(entries, "init cache/redis"), indexOf(entries, "init llm/openai"))
	assert.Less(t, indexOf(entries, "init telemetry/otel"), indexOf(entries, "init llm/openai"))

	running := env.orch.Running()
	require.Len(t, running, 4)
	for _, c := range running {
		assert.Equal(t, services.StateRunning, c.State())
	}

	require.NoError(t, env.orch.StopAll(context.Background()))
	assert.Empty(t, env.orch.Running())

	stops := env.journal.list()[4:]
	assert.Less(t, indexOf(stops, "stop llm/openai"), indexOf(stops, "stop cache/redis"))
	assert.Less(t, indexOf(stops, "stop cache/redis"), indexOf(stops, "stop secrets/vault"))

	assert.Equal(t, 3.0, testutil.ToFloat64(env.orch.metrics.componentsStarted.WithLabelValues("success")))
	assert.Equal(t, 4.0, testutil.ToFloat64(env.orch.metrics.componentsStopped.WithLabelValues("success")))
}

func TestOrchestrator_StartAll_RequiredFailure(t *testing.T) {
	cause := errors.New("vault sealed")
	keys := []dependency.ComponentKey{chatOpenAI, cacheRedis, secretsVault}
	env := newTestEnv(t, keys, map[dependency.ComponentKey]error{secretsVault: cause}, nil)
	register(t, env.orch, chatOpenAI, requires(cacheRedis))
	register(t, env.orch, cacheRedis, requires(secretsVault))

	err := env.orch.StartAll(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsConfigurationError(err))
	assert.ErrorIs(t, err, cause)

	var missing *api.MissingRequiredDependencyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "cache/redis", missing.Requester)
	assert.Equal(t, "secrets/vault", missing.Dependency)

	// Nothing that depends on the vault was started
	assert.Equal(t, []string{"init secrets/vault"}, env.journal.list())
	assert.Empty(t, env.orch.Running())
}

func TestOrchestrator_StartAll_OptionalFailure(t *testing.T) {
	keys := []dependency.ComponentKey{chatOpenAI, telemetryOtel}
	env := newTestEnv(t, keys, map[dependency.ComponentKey]error{telemetryOtel: errors.New("collector unreachable")}, nil)
	register(t, env.orch, chatOpenAI, optional(telemetryOtel))

	require.NoError(t, env.orch.StartAll(context.Background()))

	running := env.orch.Running()
	require.Len(t, running, 1)
	assert.Equal(t, chatOpenAI, running[0].Key())
}

func TestOrchestrator_StartAll_DefinedOptionalFailure(t *testing.T) {
	keys := []dependency.ComponentKey{chatOpenAI, telemetryOtel}
	env := newTestEnv(t, keys, map[dependency.ComponentKey]error{telemetryOtel: errors.New("collector unreachable")}, nil)
	register(t, env.orch, chatOpenAI, optional(telemetryOtel))
	register(t, env.orch, telemetryOtel)

	require.NoError(t, env.orch.StartAll(context.Background()))

	running := env.orch.Running()
	require.Len(t, running, 1)
	assert.Equal(t, chatOpenAI, running[0].Key())
	// The loader retries the optional dependency once more before llm/openai
	assert.Equal(t, []string{"init telemetry/otel", "init telemetry/otel", "init llm/openai"}, env.journal.list())
	assert.Equal(t, 1.0, testutil.ToFloat64(env.orch.metrics.componentsStarted.WithLabelValues("success")))
}

func TestOrchestrator_StartAll_RequiredByAnyDependent(t *testing.T) {
	cause := errors.New("collector unreachable")
	keys := []dependency.ComponentKey{chatOpenAI, cacheRedis, telemetryOtel}
	env := newTestEnv(t, keys, map[dependency.ComponentKey]error{telemetryOtel: cause}, nil)
	register(t, env.orch, telemetryOtel)
	register(t, env.orch, cacheRedis, optional(telemetryOtel))
	register(t, env.orch, chatOpenAI, requires(telemetryOtel))

	err := env.orch.StartAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, env.orch.Running())
}

func TestOrchestrator_StartAll_TopLevelFailure(t *testing.T) {
	cause := errors.New("collector unreachable")
	env := newTestEnv(t, []dependency.ComponentKey{telemetryOtel}, map[dependency.ComponentKey]error{telemetryOtel: cause}, nil)
	register(t, env.orch, telemetryOtel)

	err := env.orch.StartAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestOrchestrator_StartAll_Cycle(t *testing.T) {
	env := newTestEnv(t, []dependency.ComponentKey{chatOpenAI, cacheRedis}, nil, nil)
	register(t, env.orch, chatOpenAI, requires(cacheRedis))
	register(t, env.orch, cacheRedis, requires(chatOpenAI))

	err := env.orch.StartAll(context.Background())
	require.Error(t, err)
	assert.True(t, dependency.IsCycle(err))
	assert.Empty(t, env.journal.list())
}

func TestOrchestrator_StopAll_JoinsErrors(t *testing.T) {
	redisErr := errors.New("redis flush failed")
	vaultErr := errors.New("vault lease revoke failed")
	keys := []dependency.ComponentKey{chatOpenAI, cacheRedis, secretsVault}
	env := newTestEnv(t, keys, nil, map[dependency.ComponentKey]error{
		cacheRedis:   redisErr,
		secretsVault: vaultErr,
	})
	register(t, env.orch, chatOpenAI, requires(cacheRedis))
	register(t, env.orch, cacheRedis, requires(secretsVault))

	require.NoError(t, env.orch.StartAll(context.Background()))

	err := env.orch.StopAll(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, redisErr)
	assert.ErrorIs(t, err, vaultErr)

	// Every component was asked to stop despite the failures
	assert.Equal(t, []string{"stop llm/openai", "stop cache/redis", "stop secrets/vault"}, env.journal.list()[3:])
	assert.Empty(t, env.orch.Running())
	assert.Equal(t, 2.0, testutil.ToFloat64(env.orch.metrics.componentsStopped.WithLabelValues("error")))
}

func TestOrchestrator_Start(t *testing.T) {
	env := newTestEnv(t, []dependency.ComponentKey{chatOpenAI, cacheRedis}, nil, nil)
	register(t, env.orch, chatOpenAI, requires(cacheRedis))

	component, err := env.orch.Start(context.Background(), chatOpenAI)
	require.NoError(t, err)
	assert.Equal(t, chatOpenAI, component.Key())

	again, err := env.orch.Start(context.Background(), chatOpenAI)
	require.NoError(t, err)
	assert.Same(t, component, again)
	assert.Equal(t, []string{"init cache/redis", "init llm/openai"}, env.journal.list())
}

func TestOrchestrator_Start_MissingConstructor(t *testing.T) {
	env := newTestEnv(t, []dependency.ComponentKey{chatOpenAI}, nil, nil)
	register(t, env.orch, chatOpenAI, requires(cacheRedis))

	_, err := env.orch.Start(context.Background(), chatOpenAI)
	require.Error(t, err)
	assert.True(t, api.IsMissingRequiredDependency(err))
	assert.True(t, api.IsNotFound(err))
}

func TestOrchestrator_SubscribeToStateChanges(t *testing.T) {
	env := newTestEnv(t, []dependency.ComponentKey{cacheRedis}, nil, nil)
	register(t, env.orch, cacheRedis)
	events := env.orch.SubscribeToStateChanges()

	_, err := env.orch.Start(context.Background(), cacheRedis)
	require.NoError(t, err)

	first := <-events
	assert.Equal(t, cacheRedis, first.Key)
	assert.Equal(t, services.StateUnknown, first.OldState)
	assert.Equal(t, services.StateInitializing, first.NewState)

	second := <-events
	assert.Equal(t, services.StateInitializing, second.OldState)
	assert.Equal(t, services.StateRunning, second.NewState)
	assert.NoError(t, second.Error)
}

func TestOrchestrator_ConcurrentRegister(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	var wg sync.WaitGroup
	for _, provider := range []string{"openai", "anthropic", "mistral", "ollama", "bedrock", "vertex"} {
		wg.Add(1)
		go func(provider string) {
			defer wg.Done()
			key := dependency.NewKey("llm", provider)
			assert.NoError(t, env.orch.Register(dependency.ComponentMetadata{
				Key:          key,
				Dependencies: []dependency.DependencySpec{requires(cacheRedis)},
			}))
			_, err := env.orch.InitializationOrder()
			assert.NoError(t, err)
		}(provider)
	}
	wg.Wait()

	order, err := env.orch.InitializationOrder()
	require.NoError(t, err)
	assert.Len(t, order, 7)
	assert.Equal(t, cacheRedis, order[0])
}

func indexOf(entries []string, entry string) int {
	for i, e := range entries {
		if e == entry {
			return i
		}
	}
	return -1
}
