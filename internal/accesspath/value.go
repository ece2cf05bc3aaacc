// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package accesspath

import (
	"bytes"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
)

// Value is the current value while a path is walked. The concrete types are
// JSON, *XMLNode, Row, Text and List. A nil Value means "no result".
type Value interface {
	field(name string) Value
	index(n int) Value
	match(left, right string) Value
}

// JSON wraps a parsed JSON document or fragment.
type JSON struct {
	gjson.Result
}

// Row is one record of tabular data keyed by column name.
type Row map[string]string

// Text is a plain string produced by a transform or an XML leaf.
type Text string

// List is an ordered sequence produced by a transform.
type List []Value

// ErrUnparseable is returned by Parse when a body is neither JSON nor XML.
var ErrUnparseable = eris.New("body is neither JSON nor XML")

// Parse turns a response body into a Value, trying JSON first and XML
// second.
func Parse(body []byte) (Value, error) {
	if gjson.ValidBytes(body) {
		return JSON{gjson.ParseBytes(body)}, nil
	}
	node, err := ParseXML(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(ErrUnparseable, err.Error())
	}
	return node, nil
}

func jsonValue(r gjson.Result) Value {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	return JSON{r}
}

func (j JSON) field(name string) Value {
	if !j.IsObject() {
		return nil
	}
	v, ok := j.Map()[name]
	if !ok {
		return nil
	}
	return jsonValue(v)
}

func (j JSON) index(n int) Value {
	if !j.IsArray() {
		return nil
	}
	items := j.Array()
	if n >= len(items) {
		return nil
	}
	return jsonValue(items[n])
}

func (j JSON) match(left, right string) Value {
	if !j.IsArray() {
		return nil
	}
	for _, item := range j.Array() {
		if !item.IsObject() {
			continue
		}
		v, ok := item.Map()[left]
		if ok && v.Type == gjson.String && strings.EqualFold(v.String(), right) {
			return JSON{item}
		}
	}
	return nil
}

func (r Row) field(name string) Value {
	v, ok := r[name]
	if !ok {
		return nil
	}
	return Text(v)
}

func (Row) index(int) Value { return nil }
func (Row) match(string, string) Value { return nil }

func (Text) field(string) Value { return nil }
func (Text) index(int) Value { return nil }
func (Text) match(string, string) Value { return nil }

func (List) field(string) Value { return nil }

func (l List) index(n int) Value {
	if n >= len(l) {
		return nil
	}
	return l[n]
}

func (l List) match(left, right string) Value {
	for _, item := range l {
		if item == nil {
			continue
		}
		s, ok := String(item.field(left))
		if ok && strings.EqualFold(s, right) {
			return item
		}
	}
	return nil
}

// String renders a scalar Value. Objects, rows and lists are not scalars;
// JSON objects and arrays render as their raw text.
func String(v Value) (string, bool) {
	switch x := v.(type) {
	case Text:
		return string(x), true
	case JSON:
		if x.IsObject() || x.IsArray() {
			return x.Raw, true
		}
		return x.String(), true
	case *XMLNode:
		return x.CollapsedText(), true
	default:
		return "", false
	}
}

// elements returns the members of a sequence-typed value.
func elements(v Value) ([]Value, bool) {
	switch x := v.(type) {
	case List:
		return x, true
	case JSON:
		if !x.IsArray() {
			return nil, false
		}
		arr := x.Array()
		out := make([]Value, len(arr))
		for i, r := range arr {
			out[i] = JSON{r}
		}
		return out, true
	default:
		return nil, false
	}
}
