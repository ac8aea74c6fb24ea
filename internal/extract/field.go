package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractText returns the text of the first descendant matched by the earliest
// locator that matches anything. An element that is found but has no text still
// wins over later locators and is reported as absent.
func ExtractText(container *goquery.Selection, locators []string) (string, bool) {
	for _, locator := range locators {
		el := container.Find(locator).First()
		if el.Length() == 0 {
			continue
		}

		text := normalizeText(el.Text())
		return text, text != ""
	}

	return "", false
}

// ExtractImageSource returns the raw image reference for a container. Each image
// locator is tried in order; within an element the attribute priority is src,
// data-src, data-lazy-src, then the first srcset candidate. When no locator
// yields a reference, any <img> descendant is used.
func ExtractImageSource(container *goquery.Selection, locators []string) (string, bool) {
	for _, locator := range locators {
		el := container.Find(locator).First()
		if el.Length() == 0 {
			continue
		}

		if src := imageAttr(el, true); src != "" {
			return src, true
		}
	}

	anyImg := container.Find("img").First()
	if anyImg.Length() == 0 {
		return "", false
	}

	src := imageAttr(anyImg, false)
	return src, src != ""
}

// ExtractLink returns the href of the first anchor inside the container.
func ExtractLink(container *goquery.Selection) (string, bool) {
	href, exists := container.Find(ProductLinkLocator).First().Attr("href")
	if !exists {
		return "", false
	}

	href = strings.TrimSpace(href)
	return href, href != ""
}

// MetaDescription returns the page-level meta description content.
func MetaDescription(doc *goquery.Document) (string, bool) {
	if doc == nil {
		return "", false
	}

	content, exists := doc.Find(MetaDescriptionLocator).First().Attr("content")
	if !exists {
		return "", false
	}

	content = normalizeText(content)
	return content, content != ""
}

func imageAttr(el *goquery.Selection, withSrcset bool) string {
	for _, attr := range ImageAttributes {
		if v := strings.TrimSpace(el.AttrOr(attr, "")); v != "" {
			return v
		}
	}

	if !withSrcset {
		return ""
	}

	return firstSrcsetURL(el.AttrOr("srcset", ""))
}

func firstSrcsetURL(srcset string) string {
	first, _, _ := strings.Cut(srcset, ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// normalizeText trims the text and collapses inner whitespace runs to single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
