// Package sanitize neutralizes mention-injection in model output and
// decides whether a reply fits inline or must ship as a file.
package sanitize

import (
	"strings"
	"unicode/utf8"
)

// Model output is untrusted: a completion containing @everyone, @here or
// raw <@...> mention syntax would ping users if delivered unmodified.
// Each token gets a pipe inserted so the text stays readable but the
// platform no longer resolves the mention.
//
// The "<@|" self-mapping comes first: Replacer tries patterns in argument
// order, so an already-broken mention is consumed as-is instead of the
// "<@" rule stacking another pipe onto it. That is what makes Sanitize
// idempotent.
var replacer = strings.NewReplacer(
	"<@|", "<@|",
	"<@", "<@|",
	"@everyone", "@|everyone",
	"@here", "@|here",
)

// Sanitize neutralizes every mention trigger in text. Idempotent: none of
// the replacement strings contain a trigger, so a second pass is a no-op.
func Sanitize(text string) string {
	return replacer.Replace(text)
}

// DeliveryMode says how a reply reaches the channel.
type DeliveryMode int

const (
	// Inline delivers the reply as the message body.
	Inline DeliveryMode = iota
	// File delivers the reply as a UTF-8 text attachment.
	File
)

func (m DeliveryMode) String() string {
	if m == File {
		return "file"
	}
	return "inline"
}

// Mode picks the delivery mode for text given the platform's inline
// length limit (2000 on Discord, injected from config). The limit counts
// characters, not bytes: Discord measures message length in codepoints,
// so a multibyte reply must not be pushed to a file early.
func Mode(text string, maxInline int) DeliveryMode {
	if utf8.RuneCountInString(text) <= maxInline {
		return Inline
	}
	return File
}
