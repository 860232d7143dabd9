package chat

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shabeebkaip/polymerhub-backend/pkg/errors"
)

// Message body limits
const (
	MaxBodyLength          = 8000 // characters for text messages
	MaxAttachmentURLLength = 2048 // file/image bodies are URLs
)

// Dangerous patterns for XSS prevention
var (
	scriptTagRegex = regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`)
	onEventRegex   = regexp.MustCompile(`(?i)\s+on\w+\s*=`)
)

// SanitizeBody validates and cleans a message body for the given type.
// Returns the sanitized body, or a 400 AppError the caller surfaces
// synchronously. Invalid messages are never buffered.
func SanitizeBody(body, msgType string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", errors.BadRequest("message body cannot be empty")
	}

	switch msgType {
	case "", "text":
		if utf8.RuneCountInString(body) > MaxBodyLength {
			return "", errors.BadRequest("message exceeds maximum length")
		}
		body = scriptTagRegex.ReplaceAllString(body, "")
		body = onEventRegex.ReplaceAllString(body, " ")
		body = html.EscapeString(body)
		return strings.TrimSpace(body), nil

	case "file", "image":
		body = strings.TrimSpace(body)
		if len(body) > MaxAttachmentURLLength {
			return "", errors.BadRequest("attachment URL exceeds maximum length")
		}
		u, err := url.Parse(body)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "", errors.BadRequest("attachment body must be a valid http(s) URL")
		}
		return body, nil

	default:
		return "", errors.BadRequest("unknown message type: " + msgType)
	}
}
