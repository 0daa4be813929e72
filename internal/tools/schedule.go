package tools

import "eventplanner/internal/domain"

// ScheduleSlot is one entry of a canned event timeline.
type ScheduleSlot struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
}

var schedules = map[string][]ScheduleSlot{
	domain.EventBirthdayParty: {
		{"6:00 PM", "Welcome & Greetings"},
		{"6:30 PM", "Games/Entertainment"},
		{"7:00 PM", "Dinner"},
		{"8:00 PM", "Cake Cutting"},
		{"8:30 PM", "Music & Dancing"},
	},
	domain.EventCorporateEvent: {
		{"7:00 PM", "Cocktails & Networking"},
		{"8:00 PM", "Welcome Address"},
		{"8:30 PM", "Dinner"},
		{"9:30 PM", "Speeches"},
		{"10:00 PM", "Networking"},
	},
}

var genericSchedule = []ScheduleSlot{
	{"6:00 PM", "Event Start"},
	{"8:00 PM", "Main Activity"},
	{"10:00 PM", "Event End"},
}

// ScheduleFor returns a copy of the timeline for eventType, or the generic one.
func ScheduleFor(eventType string) []ScheduleSlot {
	src, ok := schedules[eventType]
	if !ok {
		src = genericSchedule
	}
	out := make([]ScheduleSlot, len(src))
	copy(out, src)
	return out
}
