package codegen

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	s, err := Parse([]byte(validSchema))
	require.NoError(t, err)

	src, err := Generate(s)
	require.NoError(t, err)
	out := string(src)

	assert.Contains(t, out, "// Code generated by kessokugen. DO NOT EDIT.")
	assert.Contains(t, out, "package game")
	assert.Contains(t, out, `"github.com/example/game/components"`)
	assert.Contains(t, out, `"`+ImportPath+`"`)
	assert.Contains(t, out, "// StaticMesh is a mesh placed in the world.")
	assert.Contains(t, out, "// Movement is a query item.")
	assert.Regexp(t, `Position\s+\*components\.Position\s+`+"`"+`ecs:"mut"`+"`", out)
	assert.Regexp(t, `Tint\s+\*components\.Color\s+`+"`"+`ecs:"opt"`+"`", out)
	assert.Contains(t, out, "kessoku.MustRegisterBundle[StaticMesh]()")
	assert.Contains(t, out, "kessoku.MustRegisterQuery[Movement]()")

	f, err := parser.ParseFile(token.NewFileSet(), "generated.go", src, parser.ParseComments)
	require.NoError(t, err)
	assert.Equal(t, "game", f.Name.Name)
	assert.Len(t, f.Imports, 2)
}

func TestGenerateWithoutImports(t *testing.T) {
	s := &Schema{
		Package: "game",
		Queries: []Query{{
			Name: "Reader",
			Fields: []QueryField{
				{Name: "Value", Type: "int32"},
				{Name: "Flag", Type: "bool", Optional: true, Access: "write"},
			},
		}},
	}
	src, err := Generate(s)
	require.NoError(t, err)
	assert.Contains(t, string(src), "`ecs:\"opt,mut\"`")

	f, err := parser.ParseFile(token.NewFileSet(), "generated.go", src, 0)
	require.NoError(t, err)
	assert.Len(t, f.Imports, 1)
}

func TestGenerateInvalid(t *testing.T) {
	_, err := Generate(&Schema{Package: "game"})
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestGenerateFile(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "schema.yaml")
	out := filepath.Join(dir, "gen", "schema_generated.go")
	require.NoError(t, os.WriteFile(schema, []byte(validSchema), 0o644))

	changed, err := GenerateFile(schema, out)
	require.NoError(t, err)
	assert.True(t, changed)
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	changed, err = GenerateFile(schema, out)
	require.NoError(t, err)
	assert.False(t, changed, "unchanged output is not rewritten")

	again, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

// The checked-in test schema and its generated file must stay in sync.
func TestTestSchemaUpToDate(t *testing.T) {
	s, err := Load(filepath.Join("..", "testschema", "schema.yaml"))
	require.NoError(t, err)
	want, err := Generate(s)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join("..", "testschema", "schema_generated.go"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got), "run go generate to refresh internal/testschema")
}
