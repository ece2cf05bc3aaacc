// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package accesspath

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pdiddy/oci-engine/internal/httputil"
)

// Op names a transform that may appear in an access path.
type Op int

const (
	OpDecode Op = iota + 1
	OpEncode
	OpJoin
	OpShape
	OpRemove
	OpNormDate
	OpDateStrings
	OpAPI
	OpAvoidPrefixRemoval
)

var opNames = map[string]Op{
	"decode":               OpDecode,
	"encode":               OpEncode,
	"join":                 OpJoin,
	"shape":                OpShape,
	"remove":               OpRemove,
	"normdate":             OpNormDate,
	"datestrings":          OpDateStrings,
	"api":                  OpAPI,
	"avoid_prefix_removal": OpAvoidPrefixRemoval,
}

// ErrUnknownFunction is returned when a path names a transform that does
// not exist.
var ErrUnknownFunction = eris.New("unknown access path function")

// ParseOp resolves a transform name.
func ParseOp(name string) (Op, error) {
	op, ok := opNames[name]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownFunction, "%q", name)
	}
	return op, nil
}

func (o Op) String() string {
	for name, op := range opNames {
		if op == o {
			return name
		}
	}
	return "unknown"
}

// Func is one transform. in is the value being transformed (nil when a call
// step has no arguments) and args are the remaining literal arguments.
type Func func(ctx context.Context, in Value, args []string) (Value, error)

// Decoder turns an identifier numeral into a DOI.
type Decoder interface {
	Decode(numeral string) string
}

// Fetcher retrieves a URL for the api transform.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, header http.Header) (*httputil.Response, error)
}

// Registry binds every Op to its implementation.
type Registry struct {
	funcs map[Op]Func
}

// avoidPrefix is consumed whole by the greedy supplier prefix pattern, so a
// value passed through avoid_prefix_removal survives prefix stripping.
const avoidPrefix = "0123567890"

var nonDateChars = regexp.MustCompile(`[^\d-]`)

// NewRegistry builds the transform table. decoder backs "decode" and
// fetcher backs "api"; either may be nil when the caller never uses that
// transform.
func NewRegistry(decoder Decoder, fetcher Fetcher) *Registry {
	r := &Registry{}
	r.funcs = map[Op]Func{
		OpDecode: stringFunc(func(s string, _ []string) string {
			if decoder == nil {
				return s
			}
			return decoder.Decode(s)
		}),
		OpEncode: stringFunc(func(s string, _ []string) string {
			return httputil.Quote(s)
		}),
		OpJoin: join,
		OpShape: stringFunc(func(s string, args []string) string {
			return arg(args, 0) + httputil.Quote(s)
		}),
		OpRemove: stringFunc(func(s string, args []string) string {
			if old := arg(args, 0); old != "" {
				return strings.ReplaceAll(s, old, "")
			}
			return s
		}),
		OpNormDate: stringFunc(func(s string, _ []string) string {
			return nonDateChars.ReplaceAllString(s, "")
		}),
		OpDateStrings: dateStrings,
		OpAPI: func(ctx context.Context, in Value, _ []string) (Value, error) {
			return callAPI(ctx, fetcher, in)
		},
		OpAvoidPrefixRemoval: stringFunc(func(s string, _ []string) string {
			return avoidPrefix + s
		}),
	}
	return r
}

// Call runs op.
func (r *Registry) Call(ctx context.Context, op Op, in Value, args []string) (Value, error) {
	f, ok := r.funcs[op]
	if !ok {
		return nil, eris.Wrapf(ErrUnknownFunction, "%d", int(op))
	}
	return f(ctx, in, args)
}

// ApplyString runs the named transform on a plain string and renders the
// result back to a string. The resolver uses it for descriptor
// preprocessing.
func (r *Registry) ApplyString(ctx context.Context, name, s string) (string, error) {
	op, err := ParseOp(name)
	if err != nil {
		return "", err
	}
	v, err := r.Call(ctx, op, Text(s), nil)
	if err != nil {
		return "", err
	}
	out, _ := String(v)
	return out, nil
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// stringFunc lifts a string transform into a Func. Non-scalar input yields
// no result.
func stringFunc(f func(s string, args []string) string) Func {
	return func(_ context.Context, in Value, args []string) (Value, error) {
		s, ok := String(in)
		if !ok {
			return nil, nil
		}
		return Text(f(s, args)), nil
	}
}

// join concatenates a sequence with the first argument as separator.
// Anything that is not a sequence passes through unchanged.
func join(_ context.Context, in Value, args []string) (Value, error) {
	items, ok := elements(in)
	if !ok {
		return in, nil
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		s, _ := String(item)
		parts = append(parts, s)
	}
	return Text(strings.Join(parts, arg(args, 0))), nil
}

// dateStrings renders each member of a sequence as a string, left-padding
// single characters with a zero ("5" becomes "05").
func dateStrings(_ context.Context, in Value, _ []string) (Value, error) {
	items, ok := elements(in)
	if !ok {
		return nil, nil
	}
	out := make(List, 0, len(items))
	for _, item := range items {
		s, _ := String(item)
		if len(s) == 1 {
			s = "0" + s
		}
		out = append(out, Text(s))
	}
	return out, nil
}

func callAPI(ctx context.Context, fetcher Fetcher, in Value) (Value, error) {
	u, ok := String(in)
	if !ok || fetcher == nil {
		return nil, nil
	}
	resp, err := fetcher.Get(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		zap.L().Debug("api transform: non-200 status", zap.String("url", u), zap.Int("status", resp.StatusCode))
		return nil, nil
	}
	return Parse(resp.Body)
}
