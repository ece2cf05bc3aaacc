// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package accesspath evaluates the small path language service descriptors
// use to pull fields out of JSON, XML and tabular responses.
//
// A path such as
//
//	message::reference::[key==ref1]::DOI->shape(http://dx.doi.org/)
//
// walks the response one "::" step at a time. A step that cannot be taken
// yields no result rather than an error, and a list of paths is tried in
// order until one yields a value.
package accesspath

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Interpreter evaluates paths. It is safe for concurrent use.
type Interpreter struct {
	reg *Registry
}

// New returns an Interpreter backed by reg.
func New(reg *Registry) *Interpreter {
	return &Interpreter{reg: reg}
}

// Registry exposes the transform table, e.g. for descriptor preprocessing.
func (in *Interpreter) Registry() *Registry {
	return in.reg
}

// First evaluates paths in order and returns the first non-nil result.
func (in *Interpreter) First(ctx context.Context, data Value, paths []string, b Bindings) Value {
	for _, p := range paths {
		if v := in.Eval(ctx, data, p, b); v != nil {
			return v
		}
	}
	return nil
}

// FirstString is First rendered as a string. ok is false when no path
// yields a scalar.
func (in *Interpreter) FirstString(ctx context.Context, data Value, paths []string, b Bindings) (string, bool) {
	return String(in.First(ctx, data, paths, b))
}

// Eval evaluates a single path against data.
func (in *Interpreter) Eval(ctx context.Context, data Value, path string, b Bindings) Value {
	return in.eval(ctx, data, strings.Split(path, stepSep), b)
}

func (in *Interpreter) eval(ctx context.Context, data Value, steps []string, b Bindings) Value {
	if data == nil || len(steps) == 0 {
		return nil
	}

	raw := b.substitute(steps[0])
	rest := steps[1:]

	st, err := parseStep(raw)
	if err != nil {
		zap.L().Warn("access path: bad step", zap.String("step", raw), zap.Error(err))
		return nil
	}

	var result Value
	switch st.kind {
	case stepCall:
		var arg0 Value
		args := st.call.args
		if len(args) > 0 {
			arg0, args = Text(args[0]), args[1:]
		}
		result = in.call(ctx, st.call.op, arg0, args)
	case stepIndex:
		result = data.index(st.index)
	case stepMatch:
		result = data.match(st.left, st.right)
	default:
		result = data.field(st.name)
	}

	if result != nil && len(rest) == 0 {
		if node, ok := result.(*XMLNode); ok {
			result = Text(node.CollapsedText())
		}
	}

	for _, c := range st.post {
		if result == nil {
			break
		}
		result = in.call(ctx, c.op, result, c.args)
	}

	if len(rest) > 0 {
		return in.eval(ctx, result, rest, b)
	}
	return result
}

func (in *Interpreter) call(ctx context.Context, op Op, arg0 Value, args []string) Value {
	v, err := in.reg.Call(ctx, op, arg0, args)
	if err != nil {
		zap.L().Warn("access path: function failed", zap.Stringer("func", op), zap.Error(err))
		return nil
	}
	return v
}
