package textutil

import "strings"

// noteNameReplacer replaces characters that break vault paths or wiki links.
var noteNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"#", "",
	"?", "",
	"\"", "",
	"[", "",
	"]", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeNoteName converts a candidate title into a filename safe for the
// vault. Slashes and colons become dashes; link and tag metacharacters are
// removed. Returns "untitled" when nothing usable remains.
func SanitizeNoteName(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "untitled"
	}
	out := strings.TrimSpace(noteNameReplacer.Replace(title))
	if out == "" {
		return "untitled"
	}
	return out
}
