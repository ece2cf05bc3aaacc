// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Namespaces used by citation graphs.
const (
	nsCito     = "http://purl.org/spar/cito/"
	nsDatacite = "http://purl.org/spar/datacite/"
	nsLiteral  = "http://www.essepuntato.it/2010/06/literalreification/"
	nsProv     = "http://www.w3.org/ns/prov#"
	nsRDF      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	nsRDFS     = "http://www.w3.org/2000/01/rdf-schema#"
	nsXSD      = "http://www.w3.org/2001/XMLSchema#"
)

var prefixes = []struct{ prefix, ns string }{
	{"cito", nsCito},
	{"datacite", nsDatacite},
	{"literal", nsLiteral},
	{"prov", nsProv},
	{"rdf", nsRDF},
	{"rdfs", nsRDFS},
	{"xsd", nsXSD},
}

const rdfType = nsRDF + "type"

// Term is an IRI or a literal. Literals carry an optional datatype IRI.
type Term struct {
	Value    string
	Literal  bool
	Datatype string
}

// IRI builds an IRI term.
func IRI(s string) Term { return Term{Value: s} }

// Lit builds a literal term; datatype may be empty.
func Lit(s, datatype string) Term { return Term{Value: s, Literal: true, Datatype: datatype} }

// Triple is one statement.
type Triple struct {
	S, P string
	O    Term
}

// Graph is an ordered set of triples.
type Graph struct {
	triples []Triple
	seen    map[Triple]bool
}

// Add appends a triple unless it is already present.
func (g *Graph) Add(s, p string, o Term) {
	t := Triple{S: s, P: p, O: o}
	if g.seen == nil {
		g.seen = make(map[Triple]bool)
	}
	if g.seen[t] {
		return
	}
	g.seen[t] = true
	g.triples = append(g.triples, t)
}

// Merge adds every triple of other.
func (g *Graph) Merge(other *Graph) {
	for _, t := range other.triples {
		g.Add(t.S, t.P, t.O)
	}
}

// Triples returns the statements in insertion order.
func (g *Graph) Triples() []Triple {
	return g.triples
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	return len(g.triples)
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)

func (t Term) nt() string {
	if !t.Literal {
		return "<" + t.Value + ">"
	}
	s := `"` + literalEscaper.Replace(t.Value) + `"`
	if t.Datatype != "" {
		s += "^^<" + t.Datatype + ">"
	}
	return s
}

// NTriples serializes the graph one statement per line.
func (g *Graph) NTriples() string {
	var b strings.Builder
	for _, t := range g.triples {
		fmt.Fprintf(&b, "<%s> <%s> %s .\n", t.S, t.P, t.O.nt())
	}
	return b.String()
}

var localName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

func curie(iri string) string {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(iri, p.ns); ok && localName.MatchString(rest) {
			return p.prefix + ":" + rest
		}
	}
	return "<" + iri + ">"
}

func (t Term) ttl() string {
	if !t.Literal {
		return curie(t.Value)
	}
	s := `"` + literalEscaper.Replace(t.Value) + `"`
	if t.Datatype != "" {
		s += "^^" + curie(t.Datatype)
	}
	return s
}

// Turtle serializes the graph grouped by subject, with the usual prefixes.
func (g *Graph) Turtle() string {
	var b strings.Builder
	for _, p := range prefixes {
		fmt.Fprintf(&b, "@prefix %s: <%s> .\n", p.prefix, p.ns)
	}

	for _, s := range g.subjects() {
		b.WriteString("\n")
		b.WriteString(curie(s))
		first := true
		for _, t := range g.triples {
			if t.S != s {
				continue
			}
			if first {
				b.WriteString(" ")
				first = false
			} else {
				b.WriteString(" ;\n    ")
			}
			pred := curie(t.P)
			if t.P == rdfType {
				pred = "a"
			}
			b.WriteString(pred + " " + t.O.ttl())
		}
		b.WriteString(" .\n")
	}
	return b.String()
}

func (g *Graph) subjects() []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range g.triples {
		if !seen[t.S] {
			seen[t.S] = true
			out = append(out, t.S)
		}
	}
	return out
}

// JSONLD serializes the graph as expanded JSON-LD.
func (g *Graph) JSONLD() (string, error) {
	var nodes []map[string]any
	for _, s := range g.subjects() {
		node := map[string]any{"@id": s}
		for _, t := range g.triples {
			if t.S != s {
				continue
			}
			if t.P == rdfType && !t.O.Literal {
				types, _ := node["@type"].([]string)
				node["@type"] = append(types, t.O.Value)
				continue
			}
			var obj map[string]string
			if t.O.Literal {
				obj = map[string]string{"@value": t.O.Value}
				if t.O.Datatype != "" {
					obj["@type"] = t.O.Datatype
				}
			} else {
				obj = map[string]string{"@id": t.O.Value}
			}
			objs, _ := node[t.P].([]map[string]string)
			node[t.P] = append(objs, obj)
		}
		nodes = append(nodes, node)
	}
	return marshalIndent(nodes)
}

func marshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
