package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimCell(t *testing.T) {
	assert.Equal(t, "Acme  Corp", TrimCell("\n\t Acme  Corp\u00a0 "))
	assert.Equal(t, "", TrimCell(" \u00a0 "))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Health Care", CleanText(" Health\u00a0\n Care "))
}

func TestParseWorkers(t *testing.T) {
	testCases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"150", 150, true},
		{"1,250", 1250, true},
		{" approx. 40 ", 40, true},
		{"12 (Phase 1)", 12, true},
		{"TBD", 0, false},
		{"", 0, false},
		{"3.5", 3.5, true},
	}
	for _, tc := range testCases {
		got, ok := ParseWorkers(tc.in)
		assert.Equal(t, tc.ok, ok, "ParseWorkers(%q) ok", tc.in)
		assert.Equal(t, tc.want, got, "ParseWorkers(%q)", tc.in)
	}
}

func TestParseNoticeDate(t *testing.T) {
	want := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"03/07/2024", "3/7/2024", "2024-03-07", "March 7, 2024", "Mar 7, 2024"} {
		got, ok := ParseNoticeDate(in)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}
	_, ok := ParseNoticeDate("pending")
	assert.False(t, ok)
}

func TestCanonicalSourceURL(t *testing.T) {
	got, err := CanonicalSourceURL(" HTTPS://DOL.NY.gov/warn-notices#top ")
	require.NoError(t, err)
	assert.Equal(t, "https://dol.ny.gov/warn-notices", got)

	for _, bad := range []string{"", "ftp://x/y", "/relative/path", "https://"} {
		_, err := CanonicalSourceURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestHostLimiterSharesBucketPerHost(t *testing.T) {
	hl := NewHostLimiter(1000, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, hl.WaitURL(ctx, "https://a.example/x"))
	require.NoError(t, hl.WaitURL(ctx, "https://a.example/y"))
	assert.Len(t, hl.m, 1)

	require.NoError(t, hl.WaitURL(ctx, "not a url"))
	assert.Len(t, hl.m, 2)
}

func TestNilLimiterNeverBlocks(t *testing.T) {
	var hl *HostLimiter
	assert.NoError(t, hl.WaitURL(context.Background(), "https://x"))
}
