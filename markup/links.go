/*
	markup package extracts the links of interest and the fixed-position
	fields from the pages served by the learning portal. All parsers work on
	an io.Reader holding the raw HTML of a single page.
*/

package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Kind is the classification of a link found on a course page.
type Kind int

const (
	// KindNone marks links that are not of interest.
	KindNone Kind = iota
	KindSection
	KindResource
	KindFolder
	KindAssignment
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindResource:
		return "resource"
	case KindFolder:
		return "folder"
	case KindAssignment:
		return "assignment"
	case KindURL:
		return "url"
	default:
		return "none"
	}
}

// classificationRules are evaluated in order; the first rule whose marker is
// a substring of the href wins.
var classificationRules = []struct {
	marker string
	kind   Kind
}{
	{"section", KindSection},
	{"resource", KindResource},
	{"folder", KindFolder},
	{"assign", KindAssignment},
	{"url", KindURL},
}

// LinkRef is an anchor discovered in a page.
type LinkRef struct {
	// Href is the raw value of the href attribute.
	Href string

	// DisplayText is the visible name of the link. It's empty when the
	// anchor has no text.
	DisplayText string

	// Node references the anchor element in the parsed document.
	Node *goquery.Selection
}

// Kind classifies the link by its href.
func (l LinkRef) Kind() Kind {
	return Classify(l.Href)
}

// Classify maps an href to the kind of entity it points to.
func Classify(href string) Kind {
	for _, rule := range classificationRules {
		if strings.Contains(href, rule.marker) {
			return rule.kind
		}
	}

	return KindNone
}

// ExtractLinks returns every anchor of the page that carries an href
// attribute, in document order.
func ExtractLinks(r io.Reader) ([]LinkRef, error) {
	doc, err := parse(r)
	if err != nil {
		return nil, err
	}

	return collectLinks(doc.Find("a")), nil
}

// ExtractFolderFiles returns the pluginfile links listed on a folder page.
// Only the folder tree is searched when the page renders one, so links in
// the surrounding navigation are skipped.
func ExtractFolderFiles(r io.Reader) ([]LinkRef, error) {
	doc, err := parse(r)
	if err != nil {
		return nil, err
	}

	scope := doc.Find(".foldertree")
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	var files []LinkRef
	for _, link := range collectLinks(scope.Find("a")) {
		if strings.Contains(link.Href, "pluginfile.php") {
			files = append(files, link)
		}
	}

	return files, nil
}

func collectLinks(anchors *goquery.Selection) []LinkRef {
	var links []LinkRef

	anchors.Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists {
			return
		}

		links = append(links, LinkRef{
			Href:        strings.TrimSpace(href),
			DisplayText: displayText(sel),
			Node:        sel,
		})
	})

	return links
}

// displayText prefers the first text node of an .instancename element,
// which excludes the hidden activity-type suffix portal themes append.
func displayText(sel *goquery.Selection) string {
	if instance := sel.Find(".instancename").First(); instance.Length() > 0 {
		if text := firstTextNode(instance); text != "" {
			return text
		}
	}

	return collapseSpaces(sel.Text())
}

func firstTextNode(sel *goquery.Selection) string {
	for _, node := range sel.Contents().Nodes {
		if node.Type == textNodeType {
			if text := collapseSpaces(node.Data); text != "" {
				return text
			}
		}
	}

	return ""
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(repeatedSpaceRegex.ReplaceAllString(s, " "))
}

func parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMarkup, err)
	}

	return doc, nil
}
