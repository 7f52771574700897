package menu

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	// FragmentSeparator separates the page from the in-page anchor
	FragmentSeparator = "#"
	// IndexFragmentPrefix prefix of alphabetical index anchors
	IndexFragmentPrefix = "index_"
)

var (
	pagePattern     = regexp.MustCompile(`^[A-Za-z0-9_.\-]+\.html$`)
	fragmentPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-:]+$`)
)

// Locator relative locator into a generated documentation site
type Locator struct {
	Page     string
	Fragment string
}

// ParseLocator parses "<page>.html" or "<page>.html#<fragment>"
func ParseLocator(url string) (Locator, error) {
	if url == "" {
		return Locator{}, errors.New("empty url")
	}
	page, fragment, hasFragment := strings.Cut(url, FragmentSeparator)
	if !pagePattern.MatchString(page) {
		return Locator{}, errors.Errorf("invalid page %q in url %q", page, url)
	}
	if hasFragment && !fragmentPattern.MatchString(fragment) {
		return Locator{}, errors.Errorf("invalid fragment %q in url %q", fragment, url)
	}
	return Locator{Page: page, Fragment: fragment}, nil
}

// String the url the locator was parsed from
func (l Locator) String() string {
	if l.Fragment == "" {
		return l.Page
	}
	return l.Page + FragmentSeparator + l.Fragment
}

// HasFragment locator points to an in-page anchor
func (l Locator) HasFragment() bool {
	return l.Fragment != ""
}

// IndexLetter letter of an "index_<letter>" fragment
func (l Locator) IndexLetter() (string, bool) {
	letter, ok := strings.CutPrefix(l.Fragment, IndexFragmentPrefix)
	if !ok || letter == "" {
		return "", false
	}
	return letter, true
}
