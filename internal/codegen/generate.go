package codegen

import (
	"bytes"
	"go/format"
	"os"
	"path/filepath"
	"text/template"

	"github.com/rotisserie/eris"
)

// ImportPath is the import path generated code registers its types with.
const ImportPath = "github.com/edwinsyarief/kessoku"

var fileTemplate = template.Must(template.New("file").Funcs(template.FuncMap{
	"tag": QueryField.tag,
}).Parse(`// Code generated by kessokugen. DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports}}
	"{{.}}"
{{- end}}
{{- if .Imports}}
{{end}}
	"` + ImportPath + `"
)
{{range .Bundles}}
{{if .Doc}}// {{.Name}} {{.Doc}}{{else}}// {{.Name}} is a bundle.{{end}}
type {{.Name}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}}
{{- end}}
}
{{end}}
{{- range .Queries}}
{{if .Doc}}// {{.Name}} {{.Doc}}{{else}}// {{.Name}} is a query item.{{end}}
type {{.Name}} struct {
{{- range .Fields}}
	{{.Name}} *{{.Type}} {{tag .}}
{{- end}}
}
{{end}}
func init() {
{{- range .Bundles}}
	kessoku.MustRegisterBundle[{{.Name}}]()
{{- end}}
{{- range .Queries}}
	kessoku.MustRegisterQuery[{{.Name}}]()
{{- end}}
}
`))

// Generate validates s and renders it as gofmt-formatted Go source.
func Generate(s *Schema) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, s); err != nil {
		return nil, eris.Wrap(err, "executing template")
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, eris.Wrapf(err, "formatting generated source for package %s", s.Package)
	}
	return src, nil
}

// GenerateFile loads the schema at schemaPath and writes the generated source
// to outPath. The output is only rewritten when its content changes.
func GenerateFile(schemaPath, outPath string) (changed bool, err error) {
	s, err := Load(schemaPath)
	if err != nil {
		return false, err
	}
	src, err := Generate(s)
	if err != nil {
		return false, eris.Wrapf(err, "generating from %s", schemaPath)
	}
	if old, err := os.ReadFile(outPath); err == nil && bytes.Equal(old, src) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return false, eris.Wrapf(err, "creating directory for %s", outPath)
	}
	if err := os.WriteFile(outPath, src, 0o644); err != nil {
		return false, eris.Wrapf(err, "writing %s", outPath)
	}
	return true, nil
}
