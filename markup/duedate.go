package markup

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	dayDotRegex = regexp.MustCompile(`^(\d{1,2})\.`)

	lowerGerman = cases.Lower(language.German)

	dueDateLayouts = []string{
		"2 January 2006, 15:04",
		"2 January 2006, 3:04 PM",
	}

	// monthNames maps lower-cased German and English month names to the
	// English names understood by the time package.
	monthNames = map[string]string{
		"januar": "January", "january": "January",
		"februar": "February", "february": "February",
		"märz": "March", "maerz": "March", "march": "March",
		"april": "April",
		"mai": "May", "may": "May",
		"juni": "June", "june": "June",
		"juli": "July", "july": "July",
		"august": "August",
		"september": "September",
		"oktober": "October", "october": "October",
		"november": "November",
		"dezember": "December", "december": "December",
	}
)

// ParseDueDate parses a due date as rendered by the portal in German
// ("Freitag, 12. März 2021, 23:59") or English
// ("Friday, 12 March 2021, 11:59 PM"). The date is interpreted in loc and
// returned in UTC.
func ParseDueDate(text string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	normalized := lowerGerman.String(strings.TrimSpace(text))

	// Drop the weekday prefix.
	if idx := strings.Index(normalized, ", "); idx >= 0 && !strings.ContainsAny(normalized[:idx], "0123456789") {
		normalized = normalized[idx+2:]
	}

	normalized = dayDotRegex.ReplaceAllString(normalized, "$1")

	words := strings.Fields(normalized)
	for i, word := range words {
		if month, exists := monthNames[word]; exists {
			words[i] = month
		}

		switch word {
		case "am", "pm":
			words[i] = strings.ToUpper(word)
		}
	}
	normalized = strings.Join(words, " ")

	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, normalized, loc); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unrecognized due date %q", ErrMalformedMarkup, text)
}
