package markup

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	xhtml "golang.org/x/net/html"
)

const textNodeType = xhtml.TextNode

var repeatedSpaceRegex = regexp.MustCompile(`\s+`)

// CourseRef is a course entry of the portal's home page.
type CourseRef struct {
	URL  string
	Name string
}

// ParseCourseList extracts the courses listed on the home page of an
// authenticated session.
func ParseCourseList(r io.Reader) ([]CourseRef, error) {
	doc, err := parse(r)
	if err != nil {
		return nil, err
	}

	var (
		refs []CourseRef
		seen = make(map[string]struct{})
	)
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || !strings.Contains(href, "course") {
			return
		}

		body := sel.Find(".media-body").First()
		if body.Length() == 0 {
			return
		}

		name := collapseSpaces(body.Text())
		if name == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}

		seen[href] = struct{}{}
		refs = append(refs, CourseRef{URL: href, Name: name})
	})

	return refs, nil
}

// ParseLoginToken returns the anti-forgery token embedded in the login form.
func ParseLoginToken(r io.Reader) (string, error) {
	doc, err := parse(r)
	if err != nil {
		return "", err
	}

	token, exists := doc.Find(`input[name="logintoken"]`).First().Attr("value")
	if !exists {
		return "", fmt.Errorf("%w: login token not found", ErrMalformedMarkup)
	}

	return token, nil
}

// ExtractWorkaroundTarget returns the redirect target of a url resource
// landing page. The portal renders it inside a .urlworkaround element when it
// does not redirect automatically.
func ExtractWorkaroundTarget(r io.Reader) (string, error) {
	doc, err := parse(r)
	if err != nil {
		return "", err
	}

	target, exists := doc.Find(".urlworkaround a").First().Attr("href")
	if !exists || strings.TrimSpace(target) == "" {
		return "", fmt.Errorf("%w: url workaround target not found", ErrMalformedMarkup)
	}

	return strings.TrimSpace(target), nil
}

// AssignmentStatus holds the fields read from an assignment detail page.
type AssignmentStatus struct {
	Submitted   bool
	DueDate     time.Time
	Description string
}

// submittedPhrases are matched against the lower-cased attempt status cell
// when the cell carries no status class.
var submittedPhrases = []string{
	"submitted for grading",
	"zur bewertung abgegeben",
}

// ParseAssignment reads the submission status table of an assignment page.
// Row 0 holds the attempt status, row 2 the due date. Due dates are
// interpreted in loc and returned in UTC.
func ParseAssignment(r io.Reader, loc *time.Location) (AssignmentStatus, error) {
	var status AssignmentStatus

	doc, err := parse(r)
	if err != nil {
		return status, err
	}

	rows := doc.Find(".submissionstatustable table tr")
	if rows.Length() == 0 {
		rows = doc.Find("table.generaltable tr")
	}
	if rows.Length() < 3 {
		return status, fmt.Errorf("%w: status table has %d rows", ErrMalformedMarkup, rows.Length())
	}

	attemptCell := rows.Eq(0).Find("td").Last()
	dueCell := rows.Eq(2).Find("td").Last()
	if attemptCell.Length() == 0 || dueCell.Length() == 0 {
		return status, fmt.Errorf("%w: status table cells missing", ErrMalformedMarkup)
	}

	status.Submitted = isSubmitted(attemptCell)

	if status.DueDate, err = ParseDueDate(collapseSpaces(dueCell.Text()), loc); err != nil {
		return status, err
	}

	if intro := doc.Find("#intro").First(); intro.Length() > 0 {
		raw, _ := intro.Html()
		status.Description = plainText(raw)
	}

	return status, nil
}

func isSubmitted(cell *goquery.Selection) bool {
	if cell.HasClass("submissionstatussubmitted") {
		return true
	}

	text := strings.ToLower(collapseSpaces(cell.Text()))
	for _, phrase := range submittedPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}

	return false
}

// plainText strips every tag from an HTML fragment.
func plainText(fragment string) string {
	clean := bluemonday.StrictPolicy().Sanitize(fragment)

	return collapseSpaces(html.UnescapeString(clean))
}
