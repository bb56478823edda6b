package course

import "strings"

// nameReplacer substitutes characters that are illegal in common desktop
// file systems.
var nameReplacer = strings.NewReplacer(
	":", ";",
	"/", ",",
	"\\", ",",
	"|", ",",
	"?", ".",
	"*", "",
	"<", "",
	">", "",
	`"`, "'",
)

// dotsPlaceholder replaces names made of dots only, which would otherwise
// refer to the current or the parent directory.
const dotsPlaceholder = "_"

// SanitizeName makes a scraped display name safe for use as a file or
// directory name. Distinct names may sanitize to the same string.
func SanitizeName(name string) string {
	sanitized := strings.TrimSpace(nameReplacer.Replace(name))
	if sanitized != "" && strings.Trim(sanitized, ".") == "" {
		return dotsPlaceholder
	}

	return sanitized
}
