package api

import (
	"bytes"
	"embed"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/*.json
var schemaFS embed.FS

// requestSchemas holds the compiled body schema of each op that takes a body.
type requestSchemas struct {
	create *jsonschema.Schema
	update *jsonschema.Schema
	delete *jsonschema.Schema
}

func compileSchemas() (*requestSchemas, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	compile := func(name string) (*jsonschema.Schema, error) {
		src, err := schemaFS.ReadFile("schema/" + name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(name, bytes.NewReader(src)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
		s, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		return s, nil
	}

	var out requestSchemas
	var err error
	if out.create, err = compile("create.json"); err != nil {
		return nil, err
	}
	if out.update, err = compile("update.json"); err != nil {
		return nil, err
	}
	if out.delete, err = compile("delete.json"); err != nil {
		return nil, err
	}
	return &out, nil
}

// mustCompileSchemas panics on a broken embedded schema; they are fixed at build time.
func mustCompileSchemas() *requestSchemas {
	s, err := compileSchemas()
	if err != nil {
		panic(err)
	}
	return s
}
