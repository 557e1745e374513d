package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// kst is the zone snapshot identifiers are minted in.
var kst = loadKST()

func loadKST() *time.Location {
	if loc, err := time.LoadLocation("Asia/Seoul"); err == nil {
		return loc
	}
	return time.FixedZone("KST", 9*60*60)
}

// SnapshotID formats the snapshot identity from wall-clock time in KST.
// The format sorts chronologically, which the rank-history queries rely on.
func SnapshotID(now time.Time) string {
	return now.In(kst).Format("20060102_1504") + "_KST"
}

// Slot is one UTC HH:MM entry of the update schedule.
type Slot struct {
	Hour   int
	Minute int
}

// ParseSchedule parses the comma-separated UTC HH:MM slot list.
func ParseSchedule(spec string) ([]Slot, error) {
	var slots []Slot
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		hourText, minuteText, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("invalid schedule slot %q", part)
		}
		hour, err := strconv.Atoi(hourText)
		if err != nil || hour < 0 || hour > 23 {
			return nil, fmt.Errorf("invalid hour in slot %q", part)
		}
		minute, err := strconv.Atoi(minuteText)
		if err != nil || minute < 0 || minute > 59 {
			return nil, fmt.Errorf("invalid minute in slot %q", part)
		}

		slots = append(slots, Slot{Hour: hour, Minute: minute})
	}

	if len(slots) == 0 {
		return nil, fmt.Errorf("schedule contains no slots")
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Hour != slots[j].Hour {
			return slots[i].Hour < slots[j].Hour
		}
		return slots[i].Minute < slots[j].Minute
	})

	return slots, nil
}

// NextUpdateAt returns the next slot strictly later than now (UTC); when
// no slot remains today, the first slot of the following day.
func NextUpdateAt(now time.Time, slots []Slot) time.Time {
	now = now.UTC()

	for _, slot := range slots {
		candidate := time.Date(now.Year(), now.Month(), now.Day(), slot.Hour, slot.Minute, 0, 0, time.UTC)
		if candidate.After(now) {
			return candidate
		}
	}

	first := slots[0]
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), first.Hour, first.Minute, 0, 0, time.UTC)
}
