// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package codec converts between DOIs and the all-digit numerals used inside
// Open Citation Identifiers.
//
// Every character of a DOI, once its "10." scheme marker is removed, maps to
// a two-digit code through a lookup table. Codes whose first digit would be 9
// are extended with leading nines, so a numeral is a sequence of tokens that
// match 9*[0-8][0-9].
package codec

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// Scheme is the marker stripped by Encode and restored by Decode.
const Scheme = "10."

var (
	// ErrNoTable is returned when the lookup file cannot be opened.
	ErrNoTable = eris.New("lookup table not found")

	// ErrUnmappedCharacter is returned by Encode when a DOI contains a
	// character absent from the lookup table.
	ErrUnmappedCharacter = eris.New("character not in lookup table")
)

var codePattern = regexp.MustCompile(`9*[0-8][0-9]`)

// Row is one line of the lookup CSV.
type Row struct {
	Code string `csv:"code"`
	Char string `csv:"c"`
}

// Table is the bidirectional code/character mapping. It is read-only after
// construction and safe for concurrent use.
type Table struct {
	byCode map[string]string
	byChar map[string]string
}

// NewTable builds a Table from rows. Later rows override earlier ones.
func NewTable(rows []Row) *Table {
	t := &Table{
		byCode: make(map[string]string, len(rows)),
		byChar: make(map[string]string, len(rows)),
	}
	for _, r := range rows {
		t.byCode[r.Code] = r.Char
		t.byChar[r.Char] = r.Code
	}
	return t
}

// LoadTable reads a lookup CSV with a "code,c" header.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, eris.Wrapf(ErrNoTable, "path %s", path)
		}
		return nil, eris.Wrapf(err, "opening lookup table %s", path)
	}
	defer f.Close()
	return ReadTable(f)
}

// ReadTable parses lookup rows from r.
func ReadTable(r io.Reader) (*Table, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, eris.Wrap(err, "reading lookup header")
	}

	var rows []Row
	for {
		var row Row
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, eris.Wrap(err, "decoding lookup row")
		}
		rows = append(rows, row)
	}
	return NewTable(rows), nil
}

// Len returns the number of codes in the table.
func (t *Table) Len() int {
	return len(t.byCode)
}

// Decode turns a numeral into a DOI. Codes missing from the table pass
// through verbatim. Trailing digits that do not form a complete code are
// dropped.
func (t *Table) Decode(numeral string) string {
	var b strings.Builder
	b.WriteString(Scheme)
	for _, code := range codePattern.FindAllString(numeral, -1) {
		if c, ok := t.byCode[code]; ok {
			b.WriteString(c)
		} else {
			b.WriteString(code)
		}
	}
	return b.String()
}

// Encode turns a DOI into a numeral.
func (t *Table) Encode(doi string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimPrefix(doi, Scheme) {
		code, ok := t.byChar[string(r)]
		if !ok {
			return "", eris.Wrapf(ErrUnmappedCharacter, "%q in %s", r, doi)
		}
		b.WriteString(code)
	}
	return b.String(), nil
}

// OCI builds "oci:<prefix><citing>-<prefix><cited>" from two DOIs.
func (t *Table) OCI(citingDOI, citedDOI, prefix string) (string, error) {
	citing, err := t.Encode(citingDOI)
	if err != nil {
		return "", err
	}
	cited, err := t.Encode(citedDOI)
	if err != nil {
		return "", err
	}
	return "oci:" + prefix + citing + "-" + prefix + cited, nil
}
