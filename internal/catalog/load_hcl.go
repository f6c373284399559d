package catalog

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"cloudcollector/internal/errors"
)

func hclEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"id": cty.StringVal(Placeholder),
		},
	}
}

// ParseHCL decodes an HCL catalog file.
func ParseHCL(filename string, src []byte) ([]Service, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Mark(errors.Newf("failed to parse HCL catalog %s: %s", filename, diags.Error()), ErrInvalidConfig)
	}

	var parsed fileCatalog
	diags = gohcl.DecodeBody(file.Body, hclEvalContext(), &parsed)
	if diags.HasErrors() {
		return nil, errors.Mark(errors.Newf("failed to decode HCL catalog %s: %s", filename, diags.Error()), ErrInvalidConfig)
	}

	services, err := parsed.build()
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", filename)
	}
	return services, nil
}
