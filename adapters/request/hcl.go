package request

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	cerrors "archcost/internal/errors"
)

// DecodeHCL parses an HCL request. Service blocks are labeled with the service
// id; every attribute other than purpose is a configuration field.
//
//	service "ec2" {
//	  purpose       = "web"
//	  instance_type = "t3.small"
//	}
func DecodeHCL(data []byte, filename string) (*Document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, diagError("malformed HCL request", diags)
	}

	var doc Document
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, diagError("invalid HCL request", diags)
	}

	for i := range doc.Services {
		s := &doc.Services[i]
		if s.Remain == nil {
			continue
		}
		attrs, diags := s.Remain.JustAttributes()
		if diags.HasErrors() {
			return nil, diagError(fmt.Sprintf("service %q", s.ID), diags)
		}
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, diagError(fmt.Sprintf("service %q attribute %s", s.ID, name), diags)
			}
			v, err := ctyToGo(val)
			if err != nil {
				return nil, cerrors.Wrapf(cerrors.TypeInput, err, "service %q attribute %s", s.ID, name)
			}
			if s.Config == nil {
				s.Config = make(map[string]interface{}, len(attrs))
			}
			s.Config[name] = v
		}
		s.Remain = nil
	}
	return &doc, nil
}

func diagError(message string, diags hcl.Diagnostics) error {
	return cerrors.Wrap(cerrors.TypeInput, message, diags)
}
