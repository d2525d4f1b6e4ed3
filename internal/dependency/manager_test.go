package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	llmOpenAI    = NewKey("llm", "openai")
	cacheRedis   = NewKey("cache", "redis")
	secretsVault = NewKey("secrets", "vault")
	storagePG    = NewKey("storage", "postgres")
	telemetry    = NewKey("telemetry", "otel")
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager()
	require.NoError(t, m.RegisterComponentMetadata(llmOpenAI, ComponentMetadata{
		Version: "1.4.0",
		Dependencies: []DependencySpec{
			{Type: "secrets", Provider: "vault", Kind: KindRequired},
			{Type: "cache", Provider: "redis", Kind: KindOptional},
			{Type: "telemetry", Provider: "otel", Kind: KindEnhances},
		},
	}))
	require.NoError(t, m.RegisterComponentMetadata(storagePG, ComponentMetadata{
		Dependencies: []DependencySpec{
			{Type: "secrets", Provider: "vault"}, // kind defaults to required
		},
	}))
	require.NoError(t, m.RegisterComponentMetadata(secretsVault, ComponentMetadata{Version: "1.15.2"}))
	return m
}

func TestManager_RegisterComponentMetadata(t *testing.T) {
	m := newTestManager(t)

	kind, ok := m.Graph().DependencyKind(storagePG, secretsVault)
	require.True(t, ok)
	assert.Equal(t, KindRequired, kind, "empty kind must default to required")

	md, ok := m.Metadata(llmOpenAI)
	require.True(t, ok)
	assert.Equal(t, llmOpenAI, md.Key)
	assert.Equal(t, "1.4.0", md.Version)

	assert.Equal(t, []ComponentKey{llmOpenAI, secretsVault, storagePG}, m.Components())
	assert.Equal(t, []Edge{
		{From: llmOpenAI, To: cacheRedis, Kind: KindOptional},
		{From: llmOpenAI, To: secretsVault, Kind: KindRequired},
		{From: llmOpenAI, To: telemetry, Kind: KindEnhances},
	}, m.DirectDependencies(llmOpenAI))
}

func TestManager_RegisterComponentMetadata_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		key       ComponentKey
		deps      []DependencySpec
		wantEdges int
	}{
		{
			name: "empty key",
			key:  NewKey("", "openai"),
		},
		{
			name: "dependency without provider",
			key:  llmOpenAI,
			deps: []DependencySpec{
				{Type: "secrets", Provider: "vault"},
				{Type: "cache"},
			},
			wantEdges: 1,
		},
		{
			name: "unknown kind",
			key:  llmOpenAI,
			deps: []DependencySpec{{Type: "cache", Provider: "redis", Kind: "mandatory"}},
		},
		{
			name: "invalid constraint",
			key:  llmOpenAI,
			deps: []DependencySpec{{Type: "cache", Provider: "redis", Version: "totally-invalid"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			err := m.RegisterComponentMetadata(tt.key, ComponentMetadata{Dependencies: tt.deps})
			require.Error(t, err)
			// No rollback: edges added before the bad entry stay.
			assert.Len(t, m.Graph().Edges(), tt.wantEdges)
			_, ok := m.Metadata(tt.key)
			assert.False(t, ok, "invalid metadata must not be stored")
		})
	}
}

func TestManager_FailedReRegistrationKeepsMetadata(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterComponentMetadata(secretsVault, ComponentMetadata{Version: "1.15.2"}))
	require.NoError(t, m.RegisterComponentMetadata(llmOpenAI, ComponentMetadata{
		Version:      "1.4.0",
		Dependencies: []DependencySpec{{Type: "secrets", Provider: "vault", Version: ">=1.0.0"}},
	}))

	err := m.RegisterComponentMetadata(llmOpenAI, ComponentMetadata{
		Version:      "1.5.0",
		Dependencies: []DependencySpec{{Type: "secrets", Provider: "vault", Version: "totally-invalid"}},
	})
	require.Error(t, err)

	md, ok := m.Metadata(llmOpenAI)
	require.True(t, ok)
	assert.Equal(t, "1.4.0", md.Version)
	assert.Empty(t, m.VerifyVersions(), "the rejected constraint must not be checked")
}

func TestManager_ReRegistrationKeepsStaleEdges(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterComponentMetadata(llmOpenAI, ComponentMetadata{
		Dependencies: []DependencySpec{
			{Type: "cache", Provider: "redis", Kind: KindRequired},
			{Type: "secrets", Provider: "vault", Kind: KindRequired},
		},
	}))
	require.NoError(t, m.RegisterComponentMetadata(llmOpenAI, ComponentMetadata{
		Version: "2.0.0",
		Dependencies: []DependencySpec{
			{Type: "cache", Provider: "redis", Kind: KindOptional},
		},
	}))

	md, _ := m.Metadata(llmOpenAI)
	assert.Equal(t, "2.0.0", md.Version, "metadata is overwritten")
	assert.Len(t, md.Dependencies, 1)

	kind, _ := m.Graph().DependencyKind(llmOpenAI, cacheRedis)
	assert.Equal(t, KindOptional, kind, "re-declared edge takes the new kind")

	// The secrets edge is no longer declared but is still in the graph.
	assert.True(t, m.Graph().HasDependency(llmOpenAI, secretsVault))
	assert.Equal(t, []ComponentKey{secretsVault}, m.MissingDependencies(llmOpenAI, NewKeySet(cacheRedis)))
}

func TestManager_Orders(t *testing.T) {
	m := newTestManager(t)

	order, err := m.InitializationOrder()
	require.NoError(t, err)
	shutdown, err := m.ShutdownOrder()
	require.NoError(t, err)

	require.Len(t, order, 5)
	position := make(map[ComponentKey]int)
	for i, key := range order {
		position[key] = i
	}
	assert.Less(t, position[secretsVault], position[llmOpenAI])
	assert.Less(t, position[cacheRedis], position[llmOpenAI])
	assert.Less(t, position[telemetry], position[llmOpenAI])
	assert.Less(t, position[secretsVault], position[storagePG])

	for i := range order {
		assert.Equal(t, order[i], shutdown[len(shutdown)-1-i])
	}
}

func TestManager_OrdersWithCycle(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterComponentMetadata(llmOpenAI, ComponentMetadata{
		Dependencies: []DependencySpec{{Type: "cache", Provider: "redis"}},
	}))
	require.NoError(t, m.RegisterComponentMetadata(cacheRedis, ComponentMetadata{
		Dependencies: []DependencySpec{{Type: "llm", Provider: "openai", Kind: KindOptional}},
	}))

	_, err := m.InitializationOrder()
	assert.True(t, IsCycle(err))
	_, err = m.ShutdownOrder()
	assert.True(t, IsCycle(err))
}

func TestManager_MissingDependencies(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		name      string
		key       ComponentKey
		available KeySet
		expected  []ComponentKey
	}{
		{
			name:      "nothing available",
			key:       llmOpenAI,
			available: NewKeySet(),
			expected:  []ComponentKey{secretsVault},
		},
		{
			name:      "required present, optional and enhancing absent",
			key:       llmOpenAI,
			available: NewKeySet(secretsVault),
			expected:  []ComponentKey{},
		},
		{
			name:      "optional present does not satisfy required",
			key:       llmOpenAI,
			available: NewKeySet(cacheRedis, telemetry),
			expected:  []ComponentKey{secretsVault},
		},
		{
			name:      "component without dependencies",
			key:       secretsVault,
			available: NewKeySet(),
			expected:  []ComponentKey{},
		},
		{
			name:      "unknown component",
			key:       NewKey("unknown", "x"),
			available: NewKeySet(),
			expected:  []ComponentKey{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.MissingDependencies(tt.key, tt.available))
		})
	}
}

func TestManager_VerifyDependencies(t *testing.T) {
	m := newTestManager(t)

	result := m.VerifyDependencies(NewKeySet(cacheRedis))
	assert.Equal(t, map[ComponentKey][]ComponentKey{
		llmOpenAI: {secretsVault},
		storagePG: {secretsVault},
	}, result)

	assert.Empty(t, m.VerifyDependencies(NewKeySet(secretsVault)))
}

func TestManager_IncompatibleDependencies(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.RegisterComponentMetadata(secretsVault, ComponentMetadata{Version: "1.15.2"}))
	require.NoError(t, m.RegisterComponentMetadata(cacheRedis, ComponentMetadata{Version: "not-a-version"}))
	require.NoError(t, m.RegisterComponentMetadata(storagePG, ComponentMetadata{Version: "16.1.0"}))
	require.NoError(t, m.RegisterComponentMetadata(llmOpenAI, ComponentMetadata{
		Dependencies: []DependencySpec{
			{Type: "secrets", Provider: "vault", Version: ">=1.16.0"},
			{Type: "cache", Provider: "redis", Kind: KindOptional, Version: "^7"},
			{Type: "storage", Provider: "postgres", Version: ">=15"},
			{Type: "telemetry", Provider: "otel", Version: ">=1"}, // not registered
		},
	}))

	mismatches := m.IncompatibleDependencies(llmOpenAI)
	require.Len(t, mismatches, 2)
	assert.Equal(t, secretsVault, mismatches[0].Dependency)
	assert.Equal(t, "1.15.2", mismatches[0].Version)
	assert.NotEmpty(t, mismatches[0].Reason)
	assert.Equal(t, cacheRedis, mismatches[1].Dependency)
	assert.Contains(t, mismatches[1].Reason, "invalid version")

	assert.Equal(t, mismatches, m.VerifyVersions())
	assert.Empty(t, m.IncompatibleDependencies(NewKey("unknown", "x")))
}
