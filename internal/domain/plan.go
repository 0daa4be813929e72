package domain

// Event categories recognized by intent classification.
const (
	EventBirthdayParty  = "birthday_party"
	EventCorporateEvent = "corporate_event"
	EventWedding        = "wedding"
	EventBabyShower     = "baby_shower"
	EventFarewellParty  = "farewell_party"
	EventAnniversary    = "anniversary"
	EventOther          = "other"
)

// EventCategories is the closed category set offered to the classifier.
var EventCategories = []string{
	EventBirthdayParty,
	EventCorporateEvent,
	EventWedding,
	EventBabyShower,
	EventFarewellParty,
	EventAnniversary,
	EventOther,
}

// EventExtraction is the structured record of event attributes derived from user input.
type EventExtraction struct {
	EventType    string   `json:"event_type" jsonschema:"event category such as birthday_party or corporate_event"`
	Date         *string  `json:"date,omitempty" jsonschema:"event date if mentioned"`
	GuestCount   *int     `json:"guest_count,omitempty" jsonschema:"number of guests if mentioned"`
	Budget       *float64 `json:"budget,omitempty" jsonschema:"maximum budget if mentioned"`
	Preferences  []string `json:"preferences" jsonschema:"stated preferences"`
	Requirements []string `json:"requirements" jsonschema:"stated requirements"`
}

// Guest is a single invitee.
type Guest struct {
	Name       string  `json:"name"`
	Category   string  `json:"category" jsonschema:"family, friend, colleague or other"`
	RSVPStatus *string `json:"rsvp_status,omitempty" jsonschema:"confirmed, pending or declined"`
}

// ScheduleItem is one activity in the event timeline.
type ScheduleItem struct {
	Time            string  `json:"time" jsonschema:"time in HH:MM AM/PM format"`
	Activity        string  `json:"activity"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// BudgetItem is one budget category.
type BudgetItem struct {
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description *string `json:"description,omitempty"`
}

// MenuItem is one dish or drink.
type MenuItem struct {
	Name          string   `json:"name"`
	Category      string   `json:"category" jsonschema:"appetizer, main_course, dessert or beverage"`
	Quantity      *string  `json:"quantity,omitempty"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty"`
}

// VenueSuggestion is a candidate venue.
type VenueSuggestion struct {
	Name          string   `json:"name"`
	Capacity      int      `json:"capacity"`
	EstimatedCost float64  `json:"estimated_cost"`
	Location      string   `json:"location"`
	Features      []string `json:"features"`
}

// DecorationItem is one decoration to buy or rent.
type DecorationItem struct {
	Item          string  `json:"item"`
	Quantity      int     `json:"quantity"`
	EstimatedCost float64 `json:"estimated_cost"`
	Priority      string  `json:"priority" jsonschema:"essential or optional"`
}

// ShoppingListItem is one line of the shopping list.
type ShoppingListItem struct {
	Item           string   `json:"item"`
	Quantity       string   `json:"quantity"`
	EstimatedPrice *float64 `json:"estimated_price,omitempty" jsonschema:"estimated price; use 0 if unknown"`
	Priority       string   `json:"priority" jsonschema:"essential or optional"`
	Category       *string  `json:"category,omitempty"`
}

// EventPlan is the complete structured plan.
type EventPlan struct {
	EventType   string   `json:"event_type"`
	Date        *string  `json:"date,omitempty"`
	GuestCount  *int     `json:"guest_count,omitempty" jsonschema:"number of guests; use a reasonable default like 20 if not specified"`
	BudgetTotal *float64 `json:"budget_total,omitempty"`

	Guests           []Guest            `json:"guests"`
	Schedule         []ScheduleItem     `json:"schedule"`
	BudgetBreakdown  []BudgetItem       `json:"budget_breakdown"`
	Menu             []MenuItem         `json:"menu"`
	VenueSuggestions []VenueSuggestion  `json:"venue_suggestions"`
	DecorationPlan   []DecorationItem   `json:"decoration_plan"`
	ShoppingList     []ShoppingListItem `json:"shopping_list"`

	Notes           *string  `json:"notes,omitempty"`
	Recommendations []string `json:"recommendations"`
}
