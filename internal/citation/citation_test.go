// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/oci-engine/pkg/types"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		citing string
		cited  string
		want   string
	}{
		{"2020-05-10", "2018-03-01", "P2Y2M9D"},
		{"2018-03-01", "2020-05-10", "-P2Y2M9D"},
		{"2020", "2018", "P2Y"},
		{"2020-05", "2018-03", "P2Y2M"},
		{"2020-05-10", "2018", "P2Y"},
		{"2020", "2018-03-01", "P2Y"},
		{"2020-03-01", "2020-01-31", "P0Y1M1D"},
		{"2020-01-05", "2020-01-10", "-P0Y0M5D"},
		{"2020-01", "2020-03", "-P0Y2M"},
		{"2019-05-03", "2019-05-03", "P0Y0M0D"},
	}
	for _, tt := range tests {
		t.Run(tt.citing+"_"+tt.cited, func(t *testing.T) {
			got, err := Duration(tt.citing, tt.cited)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDuration_Invalid(t *testing.T) {
	_, err := Duration("2020", "")
	assert.Error(t, err)

	_, err = Duration("2020-13", "2019-01")
	assert.Error(t, err)
}

func TestCitedDate(t *testing.T) {
	tests := []struct {
		creation string
		duration string
		want     string
	}{
		{"2020-05-10", "P2Y2M9D", "2018-03-01"},
		{"2018-03-01", "-P2Y2M9D", "2020-05-10"},
		{"2020", "P2Y", "2018"},
		{"2020-05", "P2Y", "2018-05"},
		{"2020", "P1Y3M", "2018-10"},
		{"2020-03-31", "P0Y1M", "2020-02-29"},
		{"2020-05-10", "P3D", "2020-05-07"},
	}
	for _, tt := range tests {
		t.Run(tt.creation+"_"+tt.duration, func(t *testing.T) {
			got, err := CitedDate(tt.creation, tt.duration)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCitedDate_InvertsDuration(t *testing.T) {
	pairs := [][2]string{
		{"2020-05-10", "2018-03-01"},
		{"2018-03-01", "2020-05-10"},
		{"2019-12", "2001-06"},
		{"1999", "2004"},
	}
	for _, p := range pairs {
		d, err := Duration(p[0], p[1])
		require.NoError(t, err)
		got, err := CitedDate(p[0], d)
		require.NoError(t, err)
		assert.Equal(t, p[1], got, "duration %s", d)
	}
}

func TestCitedDate_BadDuration(t *testing.T) {
	_, err := CitedDate("2020", "two years")
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	t.Run("both dates known", func(t *testing.T) {
		c := New(Params{
			OCI:           "oci:01-02",
			CitingPubDate: "2020-05-10T00:00:00Z",
			CitedPubDate:  "2018-03",
			Timespan:      "P9Y",
			CitationType:  "bogus",
		})
		assert.Equal(t, "2020-05-10", c.CitingPubDate)
		assert.Equal(t, "2020-05-10", c.CreationDate)
		assert.Equal(t, "P2Y2M", c.Duration)
		// Re-derived from creation and duration, so it takes the creation
		// date's day precision.
		assert.Equal(t, "2018-03-10", c.CitedPubDate)
		assert.Equal(t, types.CitationReference, c.CitationType)
	})

	t.Run("creation and timespan only", func(t *testing.T) {
		c := New(Params{Creation: "2020-05", Timespan: "-P1Y2M", CitationType: "supplement"})
		assert.Equal(t, "2020-05", c.CitingPubDate)
		assert.Equal(t, "2021-07", c.CitedPubDate)
		assert.Equal(t, types.CitationSupplement, c.CitationType)
	})

	t.Run("citing only", func(t *testing.T) {
		c := New(Params{CitingPubDate: "2020"})
		assert.Equal(t, "2020", c.CreationDate)
		assert.Empty(t, c.Duration)
		assert.Empty(t, c.CitedPubDate)
	})

	t.Run("nothing dated", func(t *testing.T) {
		c := New(Params{JournalSC: true})
		assert.Empty(t, c.CreationDate)
		assert.Empty(t, c.CitingPubDate)
		assert.True(t, c.JournalSelfCitation)
		assert.False(t, c.AuthorSelfCitation)
	})
}

func TestEntityID(t *testing.T) {
	tests := []struct {
		shape string
		url   string
		want  string
	}{
		{"http://dx.doi.org/([[XXX__decode]])", "http://dx.doi.org/10.1%2Fabc", "10.1/abc"},
		{"https://pubmed.org/([[XXX]])", "https://pubmed.org/12345", "12345"},
		{"https://pubmed.org/([[XXX]])", "https://pubmed.org/a%20b", "a%20b"},
		{"([[XXX", "http://x", "http://x"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, EntityID(tt.shape, tt.url))
		})
	}

	c := &types.Citation{IDShape: "http://dx.doi.org/([[XXX__decode]])", CitingURL: "http://dx.doi.org/10.1/a", CitedURL: "http://dx.doi.org/10.2/b"}
	assert.Equal(t, "10.1/a", CitingID(c))
	assert.Equal(t, "10.2/b", CitedID(c))
}
