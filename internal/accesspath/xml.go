// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package accesspath

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// XMLNode is one element of a parsed XML document.
type XMLNode struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*XMLNode

	// text holds all character data below this element in document order.
	text strings.Builder
}

// ParseXML reads a whole document and returns its root element. Non-UTF-8
// documents are transcoded according to their declared charset.
func ParseXML(r io.Reader) (*XMLNode, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, eris.Wrapf(err, "xml: unsupported charset %q", charset)
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var root *XMLNode
	var stack []*XMLNode
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "xml: decode")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &XMLNode{Name: t.Name, Attr: t.Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, eris.New("xml: multiple root elements")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			for _, n := range stack {
				n.text.Write(t)
			}
		}
	}
	if root == nil {
		return nil, eris.New("xml: no root element")
	}
	return root, nil
}

// Is reports whether the element's local name equals name, ignoring case
// and namespace.
func (n *XMLNode) Is(name string) bool {
	return strings.EqualFold(n.Name.Local, name)
}

// CollapsedText returns the element's text content with runs of whitespace
// collapsed to one space and the ends trimmed.
func (n *XMLNode) CollapsedText() string {
	return strings.Join(strings.Fields(n.text.String()), " ")
}

// Attribute returns the value of the attribute with the given local name.
func (n *XMLNode) Attribute(name string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value, true
		}
	}
	return "", false
}

// field matches the element itself first, then its first matching child.
func (n *XMLNode) field(name string) Value {
	if n.Is(name) {
		return n
	}
	for _, c := range n.Children {
		if c.Is(name) {
			return c
		}
	}
	return nil
}

func (*XMLNode) index(int) Value { return nil }
func (*XMLNode) match(string, string) Value { return nil }
