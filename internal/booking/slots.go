package booking

import "time"

// Slot describes one entry of the hourly availability grid.
type Slot struct {
	Hour      string `json:"hora"`
	Available bool   `json:"disponible"`
	Occupied  bool   `json:"ocupado"`
	Past      bool   `json:"pasado"`
}

// gridHours is the fixed business-hours grid. Every business operates
// on the same 08:00-18:00 hourly slots.
var gridHours = []string{
	"08:00", "09:00", "10:00", "11:00", "12:00", "13:00",
	"14:00", "15:00", "16:00", "17:00", "18:00",
}

// Hours returns a copy of the slot grid.
func Hours() []string {
	out := make([]string, len(gridHours))
	copy(out, gridHours)
	return out
}

// BuildSlots computes the availability grid for a date. occupied holds
// the "HH:MM" hours already booked. Past-hour suppression applies only
// when date equals now's calendar date: an hour is past when it is not
// strictly after the current hour. Future dates never mark slots past,
// and dates already in the past simply yield no past flags either,
// matching the legacy behaviour.
func BuildSlots(date time.Time, occupied map[string]bool, now time.Time) []Slot {
	today := now.Year() == date.Year() && now.YearDay() == date.YearDay()
	slots := make([]Slot, 0, len(gridHours))
	for _, h := range gridHours {
		hour := int(h[0]-'0')*10 + int(h[1]-'0')
		past := today && hour <= now.Hour()
		occ := occupied[h]
		slots = append(slots, Slot{
			Hour:      h,
			Available: !occ && !past,
			Occupied:  occ,
			Past:      past,
		})
	}
	return slots
}
