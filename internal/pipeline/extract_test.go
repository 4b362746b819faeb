package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"dpwhparse/internal"
)

func docHTML(bodies ...string) string {
	return "<html><body><table><thead><tr><th>No.</th><th>Contract</th></tr></thead>" +
		strings.Join(bodies, "") + "</table></body></html>"
}

func contractRow(rowNo string, fields map[internal.FieldRole]string) string {
	var b strings.Builder
	b.WriteString(`<tbody class="table-group-divider"><tr>`)
	fmt.Fprintf(&b, `<th scope="row">%s</th>`, rowNo)
	i := 0
	for role, value := range fields {
		fmt.Fprintf(&b, `<td><span id="ctl00_%s_%d">%s</span></td>`, role, i, value)
		i++
	}
	b.WriteString(`</tr></tbody>`)
	return b.String()
}

const footerRow = `<tbody class="table-group-divider"><tr><td colspan="11">Showing 1 to 10 of 10 entries</td></tr></tbody>`

func sampleFields() map[internal.FieldRole]string {
	return map[internal.FieldRole]string{
		internal.RoleContractID:     "22O00077",
		internal.RoleDescription:    "Construction of Flood Mitigation Structure",
		internal.RoleContractors:    "ABC CONSTRUCTION (12345)",
		internal.RoleOffice:         "Central Office - Flood Control Management Cluster",
		internal.RoleFunds:          "GAA 2022",
		internal.RoleCost:           "96,479,756.48",
		internal.RoleEffectivity:    "March 15, 2022",
		internal.RoleExpiry:         "December 1, 2022",
		internal.RoleStatus:         "Completed",
		internal.RoleAccomplishment: "100",
	}
}

func parseFragments(t *testing.T, html string) []Fragment {
	t.Helper()
	doc, err := ParseDocument([]byte(html))
	if err != nil {
		t.Fatal(err)
	}
	return DataFragments(doc)
}

func TestDataFragmentsSkipsStructuralNoise(t *testing.T) {
	html := docHTML(
		contractRow("1.", sampleFields()),
		footerRow,
		contractRow("2.", sampleFields()),
	)
	frags := parseFragments(t, html)
	if len(frags) != 2 {
		t.Fatalf("len=%d want 2", len(frags))
	}
	if frags[0].Sequence != 1 || frags[1].Sequence != 2 {
		t.Fatalf("sequences: %d, %d", frags[0].Sequence, frags[1].Sequence)
	}
}

func TestDataFragmentsEmptyDocument(t *testing.T) {
	frags := parseFragments(t, docHTML(footerRow))
	if len(frags) != 0 {
		t.Fatalf("len=%d want 0", len(frags))
	}
}

func TestFragmentRowNumber(t *testing.T) {
	frags := parseFragments(t, docHTML(contractRow("3.", sampleFields())))
	if len(frags) != 1 {
		t.Fatalf("len=%d", len(frags))
	}
	rn := frags[0].RowNumber()
	if rn == nil || *rn != "3" {
		t.Fatalf("rowNumber=%v want 3", rn)
	}
}

func TestFragmentField(t *testing.T) {
	frags := parseFragments(t, docHTML(contractRow("1.", sampleFields())))
	frag := frags[0]

	id := frag.Field(internal.RoleContractID)
	if id == nil || *id != "22O00077" {
		t.Fatalf("contract id=%v", id)
	}
	cost := frag.Field(internal.RoleCost)
	if cost == nil || *cost != "96,479,756.48" {
		t.Fatalf("cost=%v", cost)
	}
}

func TestFragmentFieldNestedMarkup(t *testing.T) {
	fields := sampleFields()
	fields[internal.RoleDescription] = "Construction of <b>Dike</b>\n   Phase II"
	frags := parseFragments(t, docHTML(contractRow("1.", fields)))

	desc := frags[0].Field(internal.RoleDescription)
	if desc == nil || *desc != "Construction of Dike Phase II" {
		t.Fatalf("description=%v", desc)
	}
}

func TestFragmentFieldAbsent(t *testing.T) {
	fields := sampleFields()
	delete(fields, internal.RoleStatus)
	frags := parseFragments(t, docHTML(contractRow("1.", fields)))

	if got := frags[0].Field(internal.RoleStatus); got != nil {
		t.Fatalf("status=%v want nil", got)
	}
}
