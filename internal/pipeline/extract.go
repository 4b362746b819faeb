package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"dpwhparse/internal"
	"dpwhparse/internal/util"
)

// Fragment is one repeating contract row inside a document. It wraps the
// row selection and exposes role-keyed field lookup over it.
type Fragment struct {
	Sequence int
	row      *goquery.Selection
}

func ParseDocument(content []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(content))
}

// DataFragments returns the contract rows of a document in source order.
// Fragments without a th[scope=row] marker (footers, spacer groups) are
// structural noise and skipped without note.
func DataFragments(doc *goquery.Document) []Fragment {
	out := []Fragment{}
	doc.Find("tbody.table-group-divider").Each(func(_ int, tbody *goquery.Selection) {
		tr := tbody.Find("tr").First()
		if tr.Length() == 0 {
			return
		}
		if tr.Find("th[scope='row']").Length() == 0 {
			return
		}
		out = append(out, Fragment{Sequence: len(out) + 1, row: tr})
	})
	return out
}

// RowNumber returns the row marker text with the trailing period the site
// renders stripped off.
func (f Fragment) RowNumber() *string {
	th := f.row.Find("th[scope='row']").First()
	if th.Length() == 0 {
		return nil
	}
	text := strings.TrimRight(util.NormalizeSpaces(th.Text()), ".")
	return &text
}

// Field returns the whitespace-normalized descendant text of the span whose
// id contains the role token, or nil when no such span exists. Nested
// markup inside the span is flattened; absence is not an error here, the
// caller decides what a missing field means.
func (f Fragment) Field(role internal.FieldRole) *string {
	sel := f.row.Find(fmt.Sprintf("span[id*='%s']", role))
	if sel.Length() == 0 {
		return nil
	}
	text := util.NormalizeSpaces(sel.First().Text())
	return &text
}
