package numfmt

import (
	"regexp"
	"strings"
)

// Emoji maps the names accepted in $NAME$ macros to the text they expand to.
// Lookups are case-insensitive.
var Emoji = map[string]string{
	"UP":       "⬆️",
	"DOWN":     "⬇️",
	"ARROWUP":  "↑",
	"ARROWDN":  "↓",
	"CHECK":    "✅",
	"CROSS":    "❌",
	"WARN":     "⚠️",
	"WARNING":  "⚠️",
	"INFO":     "ℹ️",
	"STAR":     "⭐",
	"FIRE":     "🔥",
	"ROCKET":   "🚀",
	"MONEY":    "💰",
	"CHART":    "📈",
	"CHARTDN":  "📉",
	"BELL":     "🔔",
	"LOCK":     "🔒",
	"FLAG":     "🚩",
	"GREEN":    "🟢",
	"YELLOW":   "🟡",
	"RED":      "🔴",
	"BLUE":     "🔵",
	"ORANGE":   "🟠",
	"PURPLE":   "🟣",
	"WHITE":    "⚪",
	"BLACK":    "⚫",
	"DIAMOND":  "💎",
	"TROPHY":   "🏆",
	"CLOCK":    "🕒",
	"HEART":    "❤️",
	"THUMBSUP": "👍",
	"THUMBSDN": "👎",
}

var emojiMacro = regexp.MustCompile(`\$([A-Za-z_]+)\$`)

// ReplaceEmoji expands every $NAME$ macro whose name is in [Emoji].  Unknown
// names are left untouched.  The expansion does not depend on the value being
// rendered.
func ReplaceEmoji(s string) string {
	if strings.Count(s, "$") < 2 {
		return s
	}
	return emojiMacro.ReplaceAllStringFunc(s, func(m string) string {
		if e, ok := Emoji[strings.ToUpper(m[1:len(m)-1])]; ok {
			return e
		}
		return m
	})
}
