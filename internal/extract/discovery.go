package extract

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DiscoverContainers unions the matches of every locator in order, drops nodes
// already seen through an earlier locator, and truncates to max elements.
// A locator that matches nothing, or fails to compile, contributes nothing.
func DiscoverContainers(doc *goquery.Document, locators []string, max int) []*goquery.Selection {
	containers := make([]*goquery.Selection, 0)
	if doc == nil || max <= 0 {
		return containers
	}

	seen := make(map[*html.Node]struct{})
	for _, locator := range locators {
		doc.Find(locator).EachWithBreak(func(i int, s *goquery.Selection) bool {
			node := s.Get(0)
			if _, dup := seen[node]; dup {
				return true
			}
			seen[node] = struct{}{}
			containers = append(containers, s)
			return len(containers) < max
		})

		if len(containers) >= max {
			break
		}
	}

	return containers
}
