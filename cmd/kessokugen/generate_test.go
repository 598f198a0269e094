package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		schema string
		out    string
		want   string
	}{
		{"ExplicitOut", "schema.yaml", "gen.go", "gen.go"},
		{"DerivedFromYAML", "schema.yaml", "", "schema_generated.go"},
		{"KeepsDirectory", filepath.Join("internal", "game", "ecs.yml"), "", filepath.Join("internal", "game", "ecs_generated.go")},
		{"NoExtension", "schema", "", "schema_generated.go"},
		{"DottedDirectory", filepath.Join("v1.2", "schema.yaml"), "", filepath.Join("v1.2", "schema_generated.go")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outputPath(tt.schema, tt.out))
		})
	}
}

// setFlags overrides viper keys for the duration of the test.
func setFlags(t *testing.T, kv map[string]any) {
	t.Helper()
	for k, v := range kv {
		prev := viper.Get(k)
		viper.Set(k, v)
		t.Cleanup(func() { viper.Set(k, prev) })
	}
}

func TestRunGenerate(t *testing.T) {
	t.Run("MissingSchema", func(t *testing.T) {
		setFlags(t, map[string]any{"schema": "", "out": "", "watch": false})
		err := runGenerate(generateCmd, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no schema given")
	})

	t.Run("UnreadableSchema", func(t *testing.T) {
		dir := t.TempDir()
		setFlags(t, map[string]any{
			"schema": filepath.Join(dir, "missing.yaml"),
			"out":    "",
			"watch":  false,
		})
		assert.Error(t, runGenerate(generateCmd, nil))
	})

	t.Run("WritesDerivedOutput", func(t *testing.T) {
		dir := t.TempDir()
		schema := filepath.Join(dir, "schema.yaml")
		require.NoError(t, os.WriteFile(schema, []byte(`package: game
bundles:
  - name: Mover
    fields:
      - name: Position
        type: float32
`), 0o644))
		setFlags(t, map[string]any{"schema": schema, "out": "", "watch": false})

		require.NoError(t, runGenerate(generateCmd, nil))
		src, err := os.ReadFile(filepath.Join(dir, "schema_generated.go"))
		require.NoError(t, err)
		assert.Contains(t, string(src), "kessoku.MustRegisterBundle[Mover]()")
	})
}
