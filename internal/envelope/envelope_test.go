package envelope

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEncodeExactFormat pins the wire format byte for byte. Stored messages
// depend on it, so this test failing means a breaking change.
func TestEncodeExactFormat(t *testing.T) {
	got := Encode("hi", []Attachment{{Index: 0, Name: "a.txt", Content: "hello"}})

	want := "hi" +
		"\n\n<ATTACHMENT_FILE>\n" +
		"<FILE_INDEX>0</FILE_INDEX>\n" +
		"<FILE_NAME>a.txt</FILE_NAME>\n" +
		"<FILE_CONTENT>\nhello\n</FILE_CONTENT>\n" +
		"</ATTACHMENT_FILE>\n"
	assert.Equal(t, want, got, "Encoded block must match the wire format exactly")
}

// TestEncodeNoAttachments tests that text without files passes through unchanged
func TestEncodeNoAttachments(t *testing.T) {
	assert.Equal(t, "just text", Encode("just text", nil))
	assert.Equal(t, "", Encode("", nil))
}

// TestRoundTrip tests that decode recovers exactly what encode was given
func TestRoundTrip(t *testing.T) {
	atts := []Attachment{
		{Index: 0, Name: "a.txt", Content: "hello"},
		{Index: 1, Name: "b.csv", Content: "x,y"},
	}
	body := Encode("check these out", atts)

	decoded := Decode(body)

	assert.Equal(t, "check these out", decoded.DisplayText)
	require.Len(t, decoded.Attachments, 2, "Should recover both attachments")
	assert.Equal(t, AttachmentInfo{Index: 0, Name: "a.txt"}, decoded.Attachments[0])
	assert.Equal(t, AttachmentInfo{Index: 1, Name: "b.csv"}, decoded.Attachments[1])
}

// TestRoundTripContents tests that full content survives encoding, including
// multi-line and bracketed placeholder content
func TestRoundTripContents(t *testing.T) {
	atts := []Attachment{
		{Index: 0, Name: "report.pdf", Content: "[Error parsing PDF: corrupt stream]"},
		{Index: 1, Name: "notes.md", Content: "line one\n\nline three\ttabbed"},
		{Index: 2, Name: "empty.txt", Content: ""},
	}
	body := Encode("typed text", atts)

	got := Contents(body)

	require.Len(t, got, 3)
	assert.Equal(t, atts[0], got[0], "Placeholder content should round-trip verbatim")
	assert.Equal(t, atts[1], got[1], "Multi-line content should round-trip verbatim")
	assert.Equal(t, atts[2], got[2], "Empty content should round-trip verbatim")

	// The display view of the same message stays intact.
	decoded := Decode(body)
	assert.Equal(t, "typed text", decoded.DisplayText)
	require.Len(t, decoded.Attachments, 3)
	assert.Equal(t, "report.pdf", decoded.Attachments[0].Name)
}

// TestDecodeNoEnvelopes tests plain messages
func TestDecodeNoEnvelopes(t *testing.T) {
	decoded := Decode("  hello world\n")

	assert.Equal(t, "hello world", decoded.DisplayText, "Display text should be trimmed")
	assert.Empty(t, decoded.Attachments)
}

// TestDecodeTextAroundEnvelopes tests that text before, between and after
// envelopes is all preserved
func TestDecodeTextAroundEnvelopes(t *testing.T) {
	body := "before " +
		Encode("", []Attachment{{Index: 0, Name: "a.txt", Content: "x"}}) +
		"between" +
		Encode("", []Attachment{{Index: 1, Name: "b.txt", Content: "y"}}) +
		"after"

	decoded := Decode(body)

	require.Len(t, decoded.Attachments, 2)
	assert.Equal(t, 0, decoded.Attachments[0].Index)
	assert.Equal(t, 1, decoded.Attachments[1].Index)
	assert.Contains(t, decoded.DisplayText, "before")
	assert.Contains(t, decoded.DisplayText, "between")
	assert.Contains(t, decoded.DisplayText, "after")
	assert.NotContains(t, decoded.DisplayText, "<ATTACHMENT_FILE>")
}

// TestDecodeMalformed tests the lenient handling of damaged envelopes
func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name        string
		message     string
		wantText    string
		wantCount   int
		keepsEnvTag bool
	}{
		{
			name: "Missing FILE_NAME close tag drops the attachment",
			message: "hello\n<ATTACHMENT_FILE>\n<FILE_INDEX>0</FILE_INDEX>\n" +
				"<FILE_NAME>a.txt\n<FILE_CONTENT>\nx\n</FILE_CONTENT>\n</ATTACHMENT_FILE>\nworld",
			wantText:  "hello\n\nworld",
			wantCount: 0,
		},
		{
			name: "Missing FILE_INDEX drops the attachment",
			message: "hello\n<ATTACHMENT_FILE>\n" +
				"<FILE_NAME>a.txt</FILE_NAME>\n<FILE_CONTENT>\nx\n</FILE_CONTENT>\n</ATTACHMENT_FILE>",
			wantText:  "hello",
			wantCount: 0,
		},
		{
			name: "Non-numeric index drops the attachment",
			message: "hi\n<ATTACHMENT_FILE>\n<FILE_INDEX>first</FILE_INDEX>\n" +
				"<FILE_NAME>a.txt</FILE_NAME>\n<FILE_CONTENT>\nx\n</FILE_CONTENT>\n</ATTACHMENT_FILE>",
			wantText:  "hi",
			wantCount: 0,
		},
		{
			name:        "Unterminated open tag is kept as display text",
			message:     "hello <ATTACHMENT_FILE>\n<FILE_INDEX>0</FILE_INDEX>",
			wantText:    "hello <ATTACHMENT_FILE>\n<FILE_INDEX>0</FILE_INDEX>",
			wantCount:   0,
			keepsEnvTag: true,
		},
		{
			name: "Malformed block between valid ones only loses itself",
			message: Encode("typed", []Attachment{{Index: 0, Name: "a.txt", Content: "x"}}) +
				"<ATTACHMENT_FILE>\nbroken\n</ATTACHMENT_FILE>\n" +
				Encode("", []Attachment{{Index: 1, Name: "b.txt", Content: "y"}}),
			wantText:  "typed",
			wantCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded := Decode(tt.message)

			assert.Equal(t, tt.wantText, decoded.DisplayText)
			assert.Len(t, decoded.Attachments, tt.wantCount, "Malformed envelopes must not produce attachments")
			if !tt.keepsEnvTag {
				assert.NotContains(t, decoded.DisplayText, "<FILE_CONTENT>")
			}
		})
	}
}

// TestDecodeIndexGaps tests that indices are reported as stored, gaps included
func TestDecodeIndexGaps(t *testing.T) {
	body := Encode("gappy", []Attachment{
		{Index: 0, Name: "kept.txt", Content: "a"},
		{Index: 2, Name: "also-kept.txt", Content: "b"},
	})

	decoded := Decode(body)

	require.Len(t, decoded.Attachments, 2)
	assert.Equal(t, 0, decoded.Attachments[0].Index, "Indices must not be renumbered")
	assert.Equal(t, 2, decoded.Attachments[1].Index, "Gaps must be preserved")
}

// TestDecodeIsIdempotent tests that decoding the display text again is a no-op
func TestDecodeIsIdempotent(t *testing.T) {
	body := Encode("stable", []Attachment{{Index: 0, Name: "a.txt", Content: "x"}})

	first := Decode(body)
	second := Decode(first.DisplayText)

	assert.Equal(t, first.DisplayText, second.DisplayText)
	assert.Empty(t, second.Attachments, "Display text contains no envelopes to find")
}

// TestDecodeLargeMessage tests that scanning stays correct on a message with
// many envelopes
func TestDecodeLargeMessage(t *testing.T) {
	atts := make([]Attachment, 50)
	for i := range atts {
		atts[i] = Attachment{Index: i, Name: "file.txt", Content: strings.Repeat("x", 200)}
	}
	body := Encode("many", atts)

	decoded := Decode(body)

	assert.Equal(t, "many", decoded.DisplayText)
	require.Len(t, decoded.Attachments, 50)
	for i, a := range decoded.Attachments {
		assert.Equal(t, i, a.Index, "Encounter order must match encode order")
	}
}
