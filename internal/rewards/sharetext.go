package rewards

import (
	"net/url"
	"strings"
)

const (
	postTextLimit   = 180
	postHashtagsMax = 4
)

// ShareURL is the public link that resolves to an event by its short code.
func ShareURL(origin, code string) string {
	return strings.TrimRight(origin, "/") + "/share/" + code
}

// PostText suggests the text of a social post about e.
func PostText(e Event) string {
	base := []rune("Join me at " + e.Title + "! " + e.Description)
	if len(base) > postTextLimit {
		base = base[:postTextLimit]
	}

	tags := e.Hashtags
	if len(tags) > postHashtagsMax {
		tags = tags[:postHashtagsMax]
	}
	prefixed := make([]string, 0, len(tags))
	for _, t := range tags {
		if !strings.HasPrefix(t, "#") {
			t = "#" + t
		}
		prefixed = append(prefixed, t)
	}

	return strings.TrimSpace(string(base) + " " + strings.Join(prefixed, " "))
}

// IntentURL opens the platform's compose dialog prefilled with text. The
// LinkedIn dialog also carries origin as the shared link.
func IntentURL(p Platform, text, origin string) string {
	switch p {
	case PlatformTwitter:
		return "https://twitter.com/intent/tweet?" + url.Values{"text": {text}}.Encode()
	case PlatformLinkedIn:
		q := url.Values{"url": {origin}, "summary": {text}}
		return "https://www.linkedin.com/sharing/share-offsite/?" + q.Encode()
	default:
		return ""
	}
}
