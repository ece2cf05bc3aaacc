// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package accesspath

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Path syntax:
//
//	path := step ("::" step)*
//	step := op ("->" call)*
//	op   := call | "[" n "]" | "[" left "==" right "]" | name
//	call := name "(" args ")"
const (
	stepSep = "::"
	postSep = "->"

	placeholderCiting = "[[CITING]]"
	placeholderCited  = "[[CITED]]"
)

var (
	callPattern  = regexp.MustCompile(`^([^(]+)\((.*)\)$`)
	indexPattern = regexp.MustCompile(`^\[([0-9]+)\]$`)
	matchPattern = regexp.MustCompile(`^\[(.+)\]$`)
)

type stepKind int

const (
	stepField stepKind = iota
	stepCall
	stepIndex
	stepMatch
)

type call struct {
	op   Op
	args []string
}

type step struct {
	kind  stepKind
	name  string
	call  call
	index int
	left  string
	right string
	post  []call
}

// Bindings carries the values substituted for [[CITING]] and [[CITED]].
type Bindings struct {
	Citing string
	Cited  string
}

func (b Bindings) substitute(s string) string {
	if b.Citing != "" {
		s = strings.ReplaceAll(s, placeholderCiting, b.Citing)
	}
	if b.Cited != "" {
		s = strings.ReplaceAll(s, placeholderCited, b.Cited)
	}
	return s
}

func parseCall(s string) (call, bool, error) {
	m := callPattern.FindStringSubmatch(s)
	if m == nil {
		return call{}, false, nil
	}
	op, err := ParseOp(m[1])
	if err != nil {
		return call{}, true, err
	}
	var args []string
	if m[2] != "" {
		args = strings.Split(m[2], ",")
	}
	return call{op: op, args: args}, true, nil
}

// parseStep parses one "::"-separated step after placeholder substitution.
func parseStep(s string) (step, error) {
	parts := strings.Split(s, postSep)
	op := parts[0]

	var st step
	for _, p := range parts[1:] {
		c, ok, err := parseCall(p)
		if err != nil {
			return step{}, err
		}
		if !ok {
			return step{}, eris.Errorf("post-processing %q is not a function call", p)
		}
		st.post = append(st.post, c)
	}

	if c, ok, err := parseCall(op); err != nil {
		return step{}, err
	} else if ok {
		st.kind = stepCall
		st.call = c
		return st, nil
	}

	if m := indexPattern.FindStringSubmatch(op); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return step{}, eris.Wrapf(err, "index %q", op)
		}
		st.kind = stepIndex
		st.index = n
		return st, nil
	}

	if m := matchPattern.FindStringSubmatch(op); m != nil && strings.Contains(m[1], "==") {
		left, right, _ := strings.Cut(m[1], "==")
		st.kind = stepMatch
		st.left = left
		st.right = right
		return st, nil
	}

	st.kind = stepField
	st.name = op
	return st, nil
}

// Check parses every step of path with dummy bindings and reports the first
// syntax error, such as an unknown function name.
func Check(path string) error {
	b := Bindings{Citing: "0", Cited: "0"}
	for _, s := range strings.Split(path, stepSep) {
		if _, err := parseStep(b.substitute(s)); err != nil {
			return eris.Wrapf(err, "path %q", path)
		}
	}
	return nil
}
