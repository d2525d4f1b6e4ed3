package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"strata/internal/dependency"
	"strata/internal/formatting"
)

var chainDefinitions = map[string]string{
	"openai.yaml": `
type: llm
provider: openai
version: 1.4.0
dependencies:
  - type: cache
    provider: redis
`,
	"redis.yaml": `
type: cache
provider: redis
version: 7.2.4
dependencies:
  - type: secrets
    provider: vault
`,
}

func TestOrderCommand_YAML(t *testing.T) {
	dir := writeDefinitions(t, "", chainDefinitions)

	out, err := executeCommand(t, "order", "--config-path", dir, "-o", "yaml")
	require.NoError(t, err)

	var report formatting.OrderReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, formatting.DirectionInitialization, report.Direction)
	require.Len(t, report.Components, 3)

	assert.Equal(t, "secrets/vault", report.Components[0].Component)
	assert.False(t, report.Components[0].Defined)
	assert.Equal(t, "cache/redis", report.Components[1].Component)
	assert.Equal(t, "7.2.4", report.Components[1].Version)
	assert.Equal(t, []string{"secrets/vault"}, report.Components[1].Dependencies)
	assert.Equal(t, "llm/openai", report.Components[2].Component)
	assert.Equal(t, 3, report.Components[2].Position)
}

func TestOrderCommand_Shutdown(t *testing.T) {
	dir := writeDefinitions(t, "", chainDefinitions)

	out, err := executeCommand(t, "order", "--config-path", dir, "--shutdown", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"direction": "shutdown"`)
	assert.Less(t, strings.Index(out, "llm/openai"), strings.Index(out, `"component": "secrets/vault"`))
}

func TestOrderCommand_Table(t *testing.T) {
	dir := writeDefinitions(t, "", chainDefinitions)

	out, err := executeCommand(t, "order", "--config-path", dir, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "secrets/vault (not defined)")
	assert.Contains(t, out, "llm/openai")
}

func TestOrderCommand_Cycle(t *testing.T) {
	dir := writeDefinitions(t, "", map[string]string{
		"a.yaml": "type: a\nprovider: x\ndependencies:\n  - type: b\n    provider: x\n",
		"b.yaml": "type: b\nprovider: x\ndependencies:\n  - type: a\n    provider: x\n",
	})

	_, err := executeCommand(t, "order", "--config-path", dir)
	require.Error(t, err)
	assert.True(t, dependency.IsCycle(err))
	assert.Equal(t, ExitCodeError, getExitCode(err))
}

func TestOrderCommand_SkipsInvalidDefinitions(t *testing.T) {
	definitions := map[string]string{
		"broken.yaml": "type: [",
	}
	for name, content := range chainDefinitions {
		definitions[name] = content
	}
	dir := writeDefinitions(t, "", definitions)

	out, err := executeCommand(t, "order", "--config-path", dir, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "llm/openai")
}

func TestOrderCommand_InvalidOutput(t *testing.T) {
	dir := writeDefinitions(t, "", chainDefinitions)

	_, err := executeCommand(t, "order", "--config-path", dir, "-o", "xml")
	assert.Error(t, err)
}
