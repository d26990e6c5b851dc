package tsme

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

func parseDocument(page []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return doc, nil
}

// findScript returns the text of the first inline <script> accepted by match.
func findScript(doc *goquery.Document, match func(text string) bool) (string, bool) {
	found, ok := "", false
	doc.Find("script").EachWithBreak(func(_ int, script *goquery.Selection) bool {
		text := script.Text()
		if match(text) {
			found, ok = text, true
		}
		return !ok
	})
	return found, ok
}

// findLinkHref returns the href of the first <link rel="..."> accepted by match.
func findLinkHref(doc *goquery.Document, rel string, match func(href string) bool) (string, bool) {
	found, ok := "", false
	doc.Find(fmt.Sprintf("link[rel=%q]", rel)).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, exists := link.Attr("href")
		if exists && match(href) {
			found, ok = href, true
		}
		return !ok
	})
	return found, ok
}
