package application

// KPISet groups the headline indicators for one station and period
// selection. Durations are minutes unless the field name says hours.
type KPISet struct {
	TotalAlarms         int     `json:"total_alarms"`
	TotalAlarmedMinutes float64 `json:"total_alarmed_minutes"`
	MeanMinutesPerAlarm float64 `json:"mean_minutes_per_alarm"`
	MeanAckMinutes      float64 `json:"mean_ack_minutes"`
	AckRatePercent      float64 `json:"ack_rate_percent"`
	AvailabilityPercent float64 `json:"availability_percent"`
	MTBFHours           float64 `json:"mtbf_hours"`
	MTTRHours           float64 `json:"mttr_hours"`
	PeriodLabel         string  `json:"period_label"`
}

func meanMinutesPerAlarm(totalMinutes float64, totalAlarms int) float64 {
	if totalAlarms == 0 {
		return 0
	}
	return totalMinutes / float64(totalAlarms)
}

func percentOf(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}

// availabilityPercent is the share of the analysed period the station
// spent outside alarm state.
func availabilityPercent(alarmedMinutes, periodMinutes float64) float64 {
	if periodMinutes == 0 {
		return 0
	}
	return percentOf(periodMinutes-alarmedMinutes, periodMinutes)
}

// mtbfHours is the mean time between failures over the period.
func mtbfHours(totalAlarms int, periodHours float64) float64 {
	if totalAlarms == 0 {
		return 0
	}
	return periodHours / float64(totalAlarms)
}

// mttrHours is the mean alarmed time per alarm.
func mttrHours(alarmedHours float64, totalAlarms int) float64 {
	if totalAlarms == 0 {
		return 0
	}
	return alarmedHours / float64(totalAlarms)
}
