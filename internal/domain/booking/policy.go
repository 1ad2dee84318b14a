package booking

import (
	"time"

	"github.com/campus-sports/service-booking/internal/domain/schedule"
)

// CancellationAssessment is the outcome of the cancellation-window policy.
type CancellationAssessment struct {
	Allowed bool
	Late    bool
	Reason  string
}

// AssessCancellation evaluates whether a cancellation is permitted and whether
// it falls inside the free-cancellation window. Cancellation is forbidden once
// the booking's date is in the past or, on the booking's own date, once the
// earliest slot start has been reached (the user must check in instead). A
// same-day cancellation closer to the start than freeHours is late: it still
// succeeds but triggers the late-cancel penalty path.
func AssessCancellation(now time.Time, date string, earliestStartMinutes int, freeHours float64) CancellationAssessment {
	today := schedule.FormatDate(now)
	nowMinutes := schedule.MinutesOfDay(now)

	if date < today {
		return CancellationAssessment{Allowed: false, Reason: "the booking date has already passed"}
	}
	if date == today && nowMinutes >= earliestStartMinutes {
		return CancellationAssessment{Allowed: false, Reason: "the booking has already started; check in instead of cancelling"}
	}

	late := date == today && float64(earliestStartMinutes-nowMinutes) < freeHours*60
	return CancellationAssessment{Allowed: true, Late: late}
}
