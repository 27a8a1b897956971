package report

import (
	"github.com/fastygo/stockdesk/domain"
	"github.com/fastygo/stockdesk/pkg/localdate"
)

// Preview describes a period before it is submitted.
type Preview struct {
	Status     domain.RangeStatus
	Range      domain.DateRange
	StartLabel string
	EndLabel   string
	Days       int
}

// PreviewRange converts display dates and summarises the period. Labels and
// day count are empty unless the corresponding dates parse.
func PreviewRange(startLocal, endLocal string) Preview {
	r := domain.DateRange{
		StartDate: localdate.ToISO(startLocal),
		EndDate:   localdate.ToISO(endLocal),
	}
	return Preview{
		Status:     r.Status(),
		Range:      r,
		StartLabel: localdate.Extended(r.StartDate),
		EndLabel:   localdate.Extended(r.EndDate),
		Days:       localdate.InclusiveDays(r.StartDate, r.EndDate),
	}
}

// PresetRange returns the display bounds of the last n days ending today.
func PresetRange(days int) (startLocal, endLocal string) {
	return localdate.LastDays(days)
}
