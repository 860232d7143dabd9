package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeBodyStripsScriptsAndEscapes(t *testing.T) {
	out, err := SanitizeBody(`hello <script>alert(1)</script> world`, "text")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<")
}

func TestSanitizeBodyRejectsEmptyAndOversized(t *testing.T) {
	_, err := SanitizeBody("   ", "text")
	assert.Error(t, err)

	_, err = SanitizeBody(strings.Repeat("x", MaxBodyLength+1), "text")
	assert.Error(t, err)
}

func TestSanitizeBodyAttachmentURLs(t *testing.T) {
	out, err := SanitizeBody("https://cdn.example.com/chat-attachments/spec.pdf", "file")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/chat-attachments/spec.pdf", out)

	_, err = SanitizeBody("ftp://cdn.example.com/spec.pdf", "file")
	assert.Error(t, err)

	_, err = SanitizeBody("just words", "image")
	assert.Error(t, err)
}

func TestSanitizeBodyUnknownType(t *testing.T) {
	_, err := SanitizeBody("hi", "video")
	assert.Error(t, err)
}
