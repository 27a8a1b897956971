package report

import (
	"fmt"

	"github.com/fastygo/stockdesk/domain"
)

// Reason classifies why a report run did not produce a report.
type Reason string

const (
	ReasonNoIdentity      Reason = "no_identity"
	ReasonIncompleteRange Reason = "incomplete_range"
	ReasonMalformedRange  Reason = "malformed_range"
	ReasonInvertedRange   Reason = "inverted_range"
	ReasonScan            Reason = "scan_failed"
	ReasonSubmit          Reason = "submit_failed"
)

// Failure is the structured result of a rejected or failed run. Local
// rejections carry no Err.
type Failure struct {
	Reason      Reason
	Title       string
	Description string
	Err         error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Reason, f.Description, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Reason, f.Description)
}

func (f *Failure) Unwrap() error { return f.Err }

// Local reports whether the run was rejected before any remote call.
func (f *Failure) Local() bool {
	switch f.Reason {
	case ReasonScan, ReasonSubmit:
		return false
	default:
		return true
	}
}

func rangeFailure(status domain.RangeStatus) *Failure {
	switch status {
	case domain.RangeIncomplete:
		return &Failure{
			Reason:      ReasonIncompleteRange,
			Title:       "period required",
			Description: "select both the start and the end date",
		}
	case domain.RangeMalformed:
		return &Failure{
			Reason:      ReasonMalformedRange,
			Title:       "invalid date",
			Description: "dates must be real calendar days in DD/MM/YYYY",
		}
	default:
		return &Failure{
			Reason:      ReasonInvertedRange,
			Title:       "invalid period",
			Description: "the start date must be on or before the end date",
		}
	}
}

func remoteFailure(reason Reason, err error) *Failure {
	desc := "an error occurred while fetching products or generating the report"
	if msg, ok := domain.RemoteMessage(err); ok {
		desc = msg
	}
	return &Failure{
		Reason:      reason,
		Title:       "could not generate report",
		Description: desc,
		Err:         err,
	}
}
