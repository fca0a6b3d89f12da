package extract

import (
	"strings"
	"testing"
	"time"

	"docextract/pkg/models"
)

var testNow = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

func testDateExtractor() *DateExtractor {
	return NewDateExtractor(DefaultOptions(testNow).Dates)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDateExtractorLabels(t *testing.T) {
	text := "Invoice Date: 01/15/2024\nDue Date: 02/15/2024\n"

	got := testDateExtractor().Extract(text)

	if got.TotalDistinct != 2 {
		t.Fatalf("TotalDistinct = %d, want 2", got.TotalDistinct)
	}
	want := []struct {
		value time.Time
		label models.DateLabel
	}{
		{day(2024, time.January, 15), models.LabelInvoice},
		{day(2024, time.February, 15), models.LabelDue},
	}
	for i, w := range want {
		c := got.Candidates[i]
		if !c.Value.Equal(w.value) || c.Label != w.label {
			t.Errorf("candidate %d = %s/%s, want %s/%s", i, c.Value.Format(models.DateLayout), c.Label, w.value.Format(models.DateLayout), w.label)
		}
	}
	if !strings.Contains(got.Candidates[0].Context, "Invoice Date") {
		t.Errorf("Context = %q, want it to contain the label", got.Candidates[0].Context)
	}
}

func TestDateExtractorPriorityBeatsPosition(t *testing.T) {
	text := "Printed 03/01/2024 by the billing system.\nInvoice Date: 02/10/2024"

	got := testDateExtractor().Extract(text)

	primary, ok := got.Primary()
	if !ok {
		t.Fatal("no primary date")
	}
	if !primary.Value.Equal(day(2024, time.February, 10)) || primary.Label != models.LabelInvoice {
		t.Errorf("primary = %s/%s, want 02/10/2024/invoice", primary.Value.Format(models.DateLayout), primary.Label)
	}
	if got.Candidates[1].Label != models.LabelUnknown {
		t.Errorf("second label = %s, want unknown", got.Candidates[1].Label)
	}
}

func TestDateExtractorDeduplicates(t *testing.T) {
	text := "Order Date: 01/05/2024\nInvoice Date: January 5, 2024\nShip Date: 2024-01-09"

	got := testDateExtractor().Extract(text)

	if got.TotalDistinct != 2 {
		t.Fatalf("TotalDistinct = %d, want 2", got.TotalDistinct)
	}
	first := got.Candidates[0]
	if !first.Value.Equal(day(2024, time.January, 5)) {
		t.Fatalf("first = %s, want 01/05/2024", first.Value.Format(models.DateLayout))
	}
	if first.Label != models.LabelInvoice {
		t.Errorf("label = %s, want invoice (upgraded from order)", first.Label)
	}
	if first.Offset != strings.Index(text, "01/05/2024") {
		t.Errorf("Offset = %d, want the first occurrence", first.Offset)
	}
	if got.Candidates[1].Label != models.LabelShip {
		t.Errorf("second label = %s, want ship", got.Candidates[1].Label)
	}
}

func TestDateExtractorFormats(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"slashes", "on 03/04/2024 we", day(2024, time.March, 4)},
		{"dashes", "on 03-04-2024 we", day(2024, time.March, 4)},
		{"two digit year", "on 03/04/24 we", day(2024, time.March, 4)},
		{"day first when unambiguous", "on 15.03.2024 we", day(2024, time.March, 15)},
		{"iso", "on 2024-03-15 we", day(2024, time.March, 15)},
		{"month name first", "on Mar 15, 2024 we", day(2024, time.March, 15)},
		{"full month name", "on September 3rd, 2023 we", day(2023, time.September, 3)},
		{"day before month name", "on 5 March 2024 we", day(2024, time.March, 5)},
	}

	e := testDateExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			if got.TotalDistinct != 1 {
				t.Fatalf("TotalDistinct = %d, want 1 (%+v)", got.TotalDistinct, got.Candidates)
			}
			if !got.Candidates[0].Value.Equal(tt.want) {
				t.Errorf("Value = %s, want %s", got.Candidates[0].Value.Format(models.DateLayout), tt.want.Format(models.DateLayout))
			}
		})
	}
}

func TestDateExtractorRejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no dates", "Thank you for your business."},
		{"impossible day", "Date: 02/30/2024"},
		{"year too old", "Ref 12/31/1899"},
		{"year too far ahead", "Ref 01/01/2099"},
		{"mixed separators", "Code 01/02-2024"},
	}

	e := testDateExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.text)
			if got.TotalDistinct != 0 {
				t.Errorf("TotalDistinct = %d, want 0 (%+v)", got.TotalDistinct, got.Candidates)
			}
			if _, ok := got.Primary(); ok {
				t.Error("Primary() found a date")
			}
		})
	}
}

func TestDateResultTopKeepsTotalCount(t *testing.T) {
	text := "01/01/2024 02/01/2024 03/01/2024 04/01/2024"

	got := testDateExtractor().Extract(text)

	if got.TotalDistinct != 4 {
		t.Fatalf("TotalDistinct = %d, want 4", got.TotalDistinct)
	}
	if top := got.Top(3); len(top) != 3 {
		t.Errorf("Top(3) returned %d", len(top))
	}
	if !got.Candidates[0].Value.Equal(day(2024, time.January, 1)) {
		t.Errorf("unlabeled dates must keep text order, got %s first", got.Candidates[0].Value.Format(models.DateLayout))
	}
}
