package application

import "testing"

func TestKPIHelpersZeroGuards(t *testing.T) {
	if got := meanMinutesPerAlarm(100, 0); got != 0 {
		t.Fatalf("mean with no alarms = %v", got)
	}
	if got := percentOf(10, 0); got != 0 {
		t.Fatalf("percent of zero total = %v", got)
	}
	if got := availabilityPercent(100, 0); got != 0 {
		t.Fatalf("availability over empty period = %v", got)
	}
	if got := mtbfHours(0, 720); got != 0 {
		t.Fatalf("mtbf with no alarms = %v", got)
	}
	if got := mttrHours(10, 0); got != 0 {
		t.Fatalf("mttr with no alarms = %v", got)
	}
}

func TestKPIHelpers(t *testing.T) {
	if got := meanMinutesPerAlarm(180, 2); got != 90 {
		t.Fatalf("mean minutes = %v", got)
	}
	if got := percentOf(1, 4); got != 25 {
		t.Fatalf("percent = %v", got)
	}
	if got := availabilityPercent(21600, 43200); got != 50 {
		t.Fatalf("availability = %v", got)
	}
	if got := mtbfHours(2, 720); got != 360 {
		t.Fatalf("mtbf = %v", got)
	}
	if got := mttrHours(3, 2); got != 1.5 {
		t.Fatalf("mttr = %v", got)
	}
}
