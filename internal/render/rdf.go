// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"

	"github.com/pdiddy/oci-engine/internal/citation"
	"github.com/pdiddy/oci-engine/pkg/types"
)

// Parts selects the optional sections of a citation graph.
type Parts struct {
	OCI   bool // identifier entity
	Label bool // rdfs:label on citation and identifier
	Prov  bool // provenance of citation and identifier
}

// AllParts includes every optional section.
var AllParts = Parts{OCI: true, Label: true, Prov: true}

// CitationIRI returns the IRI of the citation entity.
func CitationIRI(c *types.Citation, base string) string {
	return base + "ci/" + bareOCI(c)
}

// IdentifierIRI returns the IRI of the identifier entity.
func IdentifierIRI(c *types.Citation, base string) string {
	return base + "id/ci-" + bareOCI(c)
}

// RDF builds the citation graph.
func RDF(c *types.Citation, base string, parts Parts) *Graph {
	g := &Graph{}
	ci := CitationIRI(c, base)

	if parts.Label {
		g.Add(ci, nsRDFS+"label", Lit(fmt.Sprintf("citation %s [ci/%s]", c.OCI, bareOCI(c)), ""))
	}
	g.Add(ci, rdfType, IRI(nsCito+"Citation"))
	if c.AuthorSelfCitation {
		g.Add(ci, rdfType, IRI(nsCito+"AuthorSelfCitation"))
	}
	if c.JournalSelfCitation {
		g.Add(ci, rdfType, IRI(nsCito+"JournalSelfCitation"))
	}
	g.Add(ci, nsCito+"hasCitingEntity", IRI(c.CitingURL))
	g.Add(ci, nsCito+"hasCitedEntity", IRI(c.CitedURL))

	if c.CreationDate != "" {
		dt := nsXSD + "gYear"
		switch {
		case citation.ContainsDays(c.CreationDate):
			dt = nsXSD + "date"
		case citation.ContainsMonths(c.CreationDate):
			dt = nsXSD + "gYearMonth"
		}
		g.Add(ci, nsCito+"hasCitationCreationDate", Lit(c.CreationDate, dt))
		if c.Duration != "" {
			g.Add(ci, nsCito+"hasCitationTimeSpan", Lit(c.Duration, nsXSD+"duration"))
		}
	}

	if parts.OCI {
		g.Merge(IdentifierRDF(c, base, parts))
	}
	if parts.Prov {
		g.Merge(provRDF(c, ci))
	}
	return g
}

// IdentifierRDF builds the graph describing the OCI itself.
func IdentifierRDF(c *types.Citation, base string, parts Parts) *Graph {
	g := &Graph{}
	id := IdentifierIRI(c, base)

	if parts.Label {
		g.Add(id, nsRDFS+"label", Lit(fmt.Sprintf("identifier ci-%s [id/ci-%s]", bareOCI(c), bareOCI(c)), ""))
	}
	g.Add(id, rdfType, IRI(nsDatacite+"Identifier"))
	g.Add(id, nsDatacite+"usesIdentifierScheme", IRI(nsDatacite+"oci"))
	g.Add(id, nsLiteral+"hasLiteralValue", Lit(c.OCI, ""))

	if parts.Prov {
		g.Merge(provRDF(c, id))
	}
	return g
}

// ProvRDF builds only the provenance statements of the citation entity.
func ProvRDF(c *types.Citation, base string) *Graph {
	return provRDF(c, CitationIRI(c, base))
}

func provRDF(c *types.Citation, subject string) *Graph {
	g := &Graph{}
	g.Add(subject, nsProv+"wasAttributedTo", IRI(c.ProvAgentURL))
	g.Add(subject, nsProv+"hadPrimarySource", IRI(c.Source))
	g.Add(subject, nsProv+"generatedAtTime", Lit(c.ProvDate, nsXSD+"dateTime"))
	return g
}
