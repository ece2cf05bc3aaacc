// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package accesspath

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/oci-engine/internal/httputil"
)

type prefixDecoder struct{}

func (prefixDecoder) Decode(numeral string) string { return "10." + numeral }

// fakeFetcher serves canned bodies by URL. Unknown URLs are 404s and the
// "fail" URL is a transport error.
type fakeFetcher map[string]string

func (f fakeFetcher) Get(_ context.Context, rawURL string, _ http.Header) (*httputil.Response, error) {
	if rawURL == "http://fail" {
		return nil, errors.New("connection refused")
	}
	body, ok := f[rawURL]
	if !ok {
		return &httputil.Response{StatusCode: http.StatusNotFound}, nil
	}
	return &httputil.Response{StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

const crossrefLike = `{
  "message": {
    "reference": [
      {"key": "ref1", "DOI": "10.1/A"},
      {"key": "REF2", "DOI": "10.2/b"}
    ],
    "issued": {"date-parts": [[2019, 5, 3]]},
    "title": null
  }
}`

func newTestInterpreter(f fakeFetcher) *Interpreter {
	return New(NewRegistry(prefixDecoder{}, f))
}

func mustParse(t *testing.T, body string) Value {
	t.Helper()
	v, err := Parse([]byte(body))
	require.NoError(t, err)
	return v
}

func TestEval_JSON(t *testing.T) {
	in := newTestInterpreter(nil)
	data := mustParse(t, crossrefLike)

	tests := []struct {
		name    string
		path    string
		want    string
		wantNil bool
	}{
		{name: "match is case-insensitive", path: "message::reference::[key==ref2]::DOI", want: "10.2/b"},
		{name: "index", path: "message::reference::[1]::DOI", want: "10.2/b"},
		{name: "date parts", path: "message::issued::date-parts::[0]->datestrings()->join(-)", want: "2019-05-03"},
		{name: "shape post call", path: "message::reference::[0]::DOI->shape(http://dx.doi.org/)", want: "http://dx.doi.org/10.1/A"},
		{name: "missing field", path: "message::missing::x", wantNil: true},
		{name: "index out of range", path: "message::reference::[5]", wantNil: true},
		{name: "no match", path: "message::reference::[key==ref9]", wantNil: true},
		{name: "json null is no result", path: "message::title", wantNil: true},
		{name: "field on array", path: "message::reference::DOI", wantNil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := in.Eval(context.Background(), data, tt.path, Bindings{})
			if tt.wantNil {
				assert.Nil(t, v)
				return
			}
			got, ok := String(v)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirst_PriorityOrder(t *testing.T) {
	in := newTestInterpreter(nil)
	data := mustParse(t, crossrefLike)

	got, ok := in.FirstString(context.Background(), data,
		[]string{"nope", "message::reference::[0]::DOI", "message::reference::[1]::DOI"}, Bindings{})
	require.True(t, ok)
	assert.Equal(t, "10.1/A", got)

	assert.Nil(t, in.First(context.Background(), data, []string{"a", "b"}, Bindings{}))
	assert.Nil(t, in.First(context.Background(), nil, []string{"message"}, Bindings{}))
}

func TestEval_XML(t *testing.T) {
	in := newTestInterpreter(nil)
	data := mustParse(t, `<?xml version="1.0" encoding="UTF-8"?>
<root xmlns="http://example.org/ns">
  <Article>
    <Title>  Hello <i>big</i>
       world </Title>
  </Article>
</root>`)

	for _, path := range []string{"article::title", "root::article::TITLE"} {
		got, ok := String(in.Eval(context.Background(), data, path, Bindings{}))
		require.True(t, ok, path)
		assert.Equal(t, "Hello big world", got, path)
	}

	assert.Nil(t, in.Eval(context.Background(), data, "article::abstract", Bindings{}))
}

func TestEval_XMLCharset(t *testing.T) {
	body := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><r><n>caf\xe9</n></r>"
	node, err := ParseXML(strings.NewReader(body))
	require.NoError(t, err)

	got, ok := String(newTestInterpreter(nil).Eval(context.Background(), node, "n", Bindings{}))
	require.True(t, ok)
	assert.Equal(t, "café", got)
}

func TestEval_APISwitchesVariant(t *testing.T) {
	f := fakeFetcher{
		"http://svc/json/10.123": `{"title": "From JSON"}`,
		"http://svc/xml/10.456":  `<record><doi>10.456</doi><title>From XML</title></record>`,
	}
	in := newTestInterpreter(f)
	data := mustParse(t, `{}`)
	b := Bindings{Citing: "123", Cited: "456"}

	got, ok := String(in.Eval(context.Background(), data, "api(http://svc/json/10.[[CITING]])::title", b))
	require.True(t, ok)
	assert.Equal(t, "From JSON", got)

	got, ok = String(in.Eval(context.Background(), data, "api(http://svc/xml/10.[[CITED]])::title", b))
	require.True(t, ok)
	assert.Equal(t, "From XML", got)

	assert.Nil(t, in.Eval(context.Background(), data, "api(http://svc/missing)::title", b))
	assert.Nil(t, in.Eval(context.Background(), data, "api(http://fail)::title", b))
}

func TestEval_Transforms(t *testing.T) {
	in := newTestInterpreter(nil)
	data := Row{"doi": "10.1/x y", "date": "Published: 2019-05-03"}
	b := Bindings{Citing: "0123", Cited: "0456"}

	tests := []struct {
		path string
		want string
	}{
		{"decode([[CITING]])", "10.0123"},
		{"avoid_prefix_removal([[CITED]])", "01235678900456"},
		{"doi->encode()", "10.1/x%20y"},
		{"doi->remove(10.)", "1/x y"},
		{"doi->shape(http://dx.doi.org/)", "http://dx.doi.org/10.1/x%20y"},
		{"date->normdate()", "2019-05-03"},
		{"doi->join(,)", "10.1/x y"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := String(in.Eval(context.Background(), data, tt.path, b))
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_UnknownFunctionYieldsNil(t *testing.T) {
	in := newTestInterpreter(nil)
	assert.Nil(t, in.Eval(context.Background(), Row{"a": "b"}, "a->bogus()", Bindings{}))
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check("message::reference::[key==[[CITED]]]::DOI->shape(http://dx.doi.org/)"))
	assert.NoError(t, Check("api(http://x/[[CITING]])::[0]"))

	err := Check("message->bogus()")
	assert.ErrorIs(t, err, ErrUnknownFunction)

	err = Check("message->notacall")
	assert.Error(t, err)
}

func TestRegistry_ApplyString(t *testing.T) {
	reg := NewRegistry(prefixDecoder{}, nil)

	got, err := reg.ApplyString(context.Background(), "decode", "1000")
	require.NoError(t, err)
	assert.Equal(t, "10.1000", got)

	_, err = reg.ApplyString(context.Background(), "nope", "x")
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestParseOp_String(t *testing.T) {
	op, err := ParseOp("avoid_prefix_removal")
	require.NoError(t, err)
	assert.Equal(t, OpAvoidPrefixRemoval, op)
	assert.Equal(t, "avoid_prefix_removal", op.String())
}
