package srt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_RendersBlocksWithOneIndexing(t *testing.T) {
	cues := []Cue{
		{StartMs: 0, EndMs: 1500, Text: "hello"},
		{StartMs: 2000, EndMs: 3200, Text: "world"},
	}
	out := Write(cues)
	assert.Contains(t, out, "1\n00:00:00,000 --> 00:00:01,500\nhello\n\n")
	assert.Contains(t, out, "2\n00:00:02,000 --> 00:00:03,200\nworld\n\n")
}

func TestParse_RoundTripsWrite(t *testing.T) {
	cues := []Cue{
		{StartMs: 0, EndMs: 1500, Text: "hello"},
		{StartMs: 2000, EndMs: 3200, Text: "line one\nline two"},
	}
	doc := Write(cues)

	parsed, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, cues[0], parsed[0])
	assert.Equal(t, cues[1], parsed[1])
}

func TestParse_RejectsMalformedIndex(t *testing.T) {
	_, err := Parse("not-a-number\n00:00:00,000 --> 00:00:01,000\nhi\n")
	assert.Error(t, err)
}

func TestParse_RejectsMissingTimeRange(t *testing.T) {
	_, err := Parse("1\n")
	assert.Error(t, err)
}

func TestParseSMI_ExtractsCuesAndStripsMarkup(t *testing.T) {
	doc := `<SAMI>
<BODY>
<SYNC Start=1000><P Class=ENCC>Hello<br>there
<SYNC Start=3000><P Class=ENCC>&nbsp;
<SYNC Start=4000><P Class=ENCC>Goodbye
</BODY>
</SAMI>`

	cues, err := ParseSMI(doc)
	require.NoError(t, err)
	require.Len(t, cues, 2)
	assert.Equal(t, int64(1000), cues[0].StartMs)
	assert.Equal(t, int64(3000), cues[0].EndMs)
	assert.Equal(t, "Hello\nthere", cues[0].Text)
	assert.Equal(t, int64(4000), cues[1].StartMs)
	assert.Equal(t, "Goodbye", cues[1].Text)
}

func TestParseSMI_NoSyncTagsIsAnError(t *testing.T) {
	_, err := ParseSMI("<SAMI><BODY>nothing here</BODY></SAMI>")
	assert.Error(t, err)
}

func TestParseSMI_LastCueDefaultsToTwoSecondDuration(t *testing.T) {
	cues, err := ParseSMI(`<SYNC Start=1000>only cue`)
	require.NoError(t, err)
	require.Len(t, cues, 1)
	assert.Equal(t, int64(3000), cues[0].EndMs)
}
