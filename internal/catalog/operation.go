package catalog

import (
	"slices"
	"strings"

	"github.com/kballard/go-shellquote"

	"cloudcollector/internal/errors"
)

const (
	// Placeholder marks the token of a detail template replaced by the item
	// identifier.
	Placeholder = "{id}"
	// PartitionFlag is the argument naming the partition an operation runs in.
	PartitionFlag = "--region"
	// GlobalPartition is the pseudo-partition of services without regions.
	GlobalPartition = "global"
)

// Operation is an ordered list of tokens naming a remote call, e.g.
// `ec2 describe-vpcs --region eu-west-1`. The zero value is empty. Methods
// never modify the receiver.
type Operation struct {
	args []string
}

// NewOperation copies args into a new Operation.
func NewOperation(args ...string) Operation {
	return Operation{args: slices.Clone(args)}
}

// ParseOperation splits a shell-style command line into an Operation.
func ParseOperation(line string) (Operation, error) {
	args, err := shellquote.Split(line)
	if err != nil {
		return Operation{}, errors.Wrapf(err, "parse operation %q", line)
	}
	return Operation{args: args}, nil
}

// Args returns a copy of the tokens.
func (o Operation) Args() []string {
	return slices.Clone(o.args)
}

// Empty reports whether the operation has no tokens.
func (o Operation) Empty() bool {
	return len(o.args) == 0
}

// Service is the first token, e.g. "s3api".
func (o Operation) Service() string {
	if len(o.args) == 0 {
		return ""
	}
	return o.args[0]
}

// Has reports whether flag appears as a token, either alone or as flag=value.
func (o Operation) Has(flag string) bool {
	for _, a := range o.args {
		if a == flag || strings.HasPrefix(a, flag+"=") {
			return true
		}
	}
	return false
}

// Bind returns the operation pinned to partition. Nothing is appended when
// the operation already names a partition, when partition is empty, or for
// the global pseudo-partition.
func (o Operation) Bind(partition string) Operation {
	if partition == "" || partition == GlobalPartition || o.Has(PartitionFlag) {
		return o
	}
	args := make([]string, 0, len(o.args)+2)
	args = append(args, o.args...)
	args = append(args, PartitionFlag, partition)
	return Operation{args: args}
}

// Substitute replaces every Placeholder token with value.
func (o Operation) Substitute(value string) Operation {
	args := slices.Clone(o.args)
	for i, a := range args {
		if a == Placeholder {
			args[i] = value
		}
	}
	return Operation{args: args}
}

func (o Operation) hasPlaceholder() bool {
	return slices.Contains(o.args, Placeholder)
}

// Equal reports token-wise equality.
func (o Operation) Equal(other Operation) bool {
	return slices.Equal(o.args, other.args)
}

// String renders the tokens as a shell-quoted command line.
func (o Operation) String() string {
	return shellquote.Join(o.args...)
}

// DetailTemplate describes one enrichment call for a listed item: the result
// of Operation, with Placeholder bound to the item identifier, is stored
// under Field.
type DetailTemplate struct {
	Field     string
	Operation Operation
}

// Detail builds the common `service action param {id}` template shape.
func Detail(field, service, action, param string) DetailTemplate {
	return DetailTemplate{
		Field:     field,
		Operation: NewOperation(service, action, param, Placeholder),
	}
}

// DetailOp builds a template from arbitrary tokens, one of which must be
// Placeholder.
func DetailOp(field string, args ...string) DetailTemplate {
	return DetailTemplate{Field: field, Operation: NewOperation(args...)}
}

// For returns the operation for one item.
func (t DetailTemplate) For(identifier string) Operation {
	return t.Operation.Substitute(identifier)
}

func (t DetailTemplate) validate() error {
	switch {
	case strings.TrimSpace(t.Field) == "":
		return errors.New("detail template has no field name")
	case t.Operation.Empty():
		return errors.Newf("detail template %q has no operation", t.Field)
	case !t.Operation.hasPlaceholder():
		return errors.Newf("detail template %q does not contain the %s placeholder", t.Field, Placeholder)
	}
	return nil
}
