package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportTypeCustom is the only report type the client requests.
const ReportTypeCustom = "Custom"

// RangeStatus classifies a date range before any report is requested.
type RangeStatus int

const (
	RangeValid RangeStatus = iota
	// RangeIncomplete means at least one bound is empty.
	RangeIncomplete
	// RangeMalformed means a bound is not a calendar date.
	RangeMalformed
	// RangeInverted means start is after end.
	RangeInverted
)

func (s RangeStatus) String() string {
	switch s {
	case RangeValid:
		return "valid"
	case RangeIncomplete:
		return "incomplete"
	case RangeMalformed:
		return "malformed"
	case RangeInverted:
		return "inverted"
	default:
		return "unknown"
	}
}

const isoLayout = "2006-01-02"

// DateRange is an inclusive calendar range in ISO form.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Status reports whether the range can be used for a report.
func (r DateRange) Status() RangeStatus {
	if r.StartDate == "" || r.EndDate == "" {
		return RangeIncomplete
	}
	start, err := time.ParseInLocation(isoLayout, r.StartDate, time.Local)
	if err != nil {
		return RangeMalformed
	}
	end, err := time.ParseInLocation(isoLayout, r.EndDate, time.Local)
	if err != nil {
		return RangeMalformed
	}
	if start.After(end) {
		return RangeInverted
	}
	return RangeValid
}

// Bounds returns local midnight of the start day and the last nanosecond of
// the end day. ok is false unless the range is valid.
func (r DateRange) Bounds() (from, to time.Time, ok bool) {
	if r.Status() != RangeValid {
		return time.Time{}, time.Time{}, false
	}
	from, _ = time.ParseInLocation(isoLayout, r.StartDate, time.Local)
	end, _ := time.ParseInLocation(isoLayout, r.EndDate, time.Local)
	to = time.Date(end.Year(), end.Month(), end.Day()+1, 0, 0, 0, 0, time.Local).Add(-time.Nanosecond)
	return from, to, true
}

// Contains reports whether t falls on one of the range's days, the end day
// included through its last instant.
func (r DateRange) Contains(t time.Time) bool {
	from, to, ok := r.Bounds()
	if !ok {
		return false
	}
	return !t.Before(from) && !t.After(to)
}

// Totals are the aggregates sent with a report request.
type Totals struct {
	Units int64           `json:"totalUnits"`
	Value decimal.Decimal `json:"totalValue"`
}

// ReportRequest is built, sent and discarded; it is never stored.
type ReportRequest struct {
	Type     string
	Email    string
	Name     string
	WhatsApp string
	Range    DateRange
	Totals   Totals
}
