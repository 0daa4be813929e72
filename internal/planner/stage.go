package planner

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

// ErrComposition is returned by New when the stage list is inconsistent.
var ErrComposition = errors.New("invalid pipeline composition")

// Field identifies one Record field; values combine into a set.
type Field uint16

const (
	FieldUserInput Field = 1 << iota
	FieldIntent
	FieldExtraction
	FieldRetrieved
	FieldEnhancedPlan
	FieldBudget
	FieldGuestList
	FieldSchedule
	FieldFinalPlan
)

var fieldNames = []string{
	"user_input", "intent", "extraction", "retrieved", "enhanced_plan",
	"budget_result", "guest_list_result", "schedule", "final_plan",
}

// Has reports whether every field of o is in f.
func (f Field) Has(o Field) bool { return f&o == o }

func (f Field) String() string {
	if f == 0 {
		return "{}"
	}
	var names []string
	for i, n := range fieldNames {
		if f&(1<<i) != 0 {
			names = append(names, n)
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Len returns the number of fields in the set.
func (f Field) Len() int { return bits.OnesCount16(uint16(f)) }

// State is the position of a run in the fixed stage sequence.
type State int

const (
	Start State = iota
	IntentClassified
	Extracted
	Retrieved
	Enhanced
	BudgetComputed
	GuestsValidated
	ScheduleBuilt
	Formatted
)

var stateNames = [...]string{
	"start", "intent_classified", "extracted", "retrieved", "enhanced",
	"budget_computed", "guests_validated", "schedule_built", "formatted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Status tags how a stage ended.
type Status string

const (
	StatusCompleted Status = "completed"
	// StatusSkipped means a prerequisite was missing and the stage wrote its empty output.
	StatusSkipped Status = "skipped"
	// StatusDegraded means an external call failed and the stage wrote a best-effort output.
	StatusDegraded Status = "degraded"
	StatusFailed   Status = "failed"
)

// Outcome is what a stage reports back; the runner logs Message.
type Outcome struct {
	Status  Status
	Message string
}

func completed(format string, args ...any) Outcome {
	return Outcome{Status: StatusCompleted, Message: fmt.Sprintf(format, args...)}
}

func degraded(format string, args ...any) Outcome {
	return Outcome{Status: StatusDegraded, Message: fmt.Sprintf(format, args...)}
}

// Stage is one step of the pipeline. Run may assign only the fields in Writes
// and must not touch Messages.
type Stage struct {
	Name    string
	Reads   Field
	Writes  Field
	Reaches State
	Run     func(ctx context.Context, r *Record) (Outcome, error)
}

// validate checks the stage list: reads are available, writes are unique,
// user_input is never written, and states advance one step at a time.
func validate(stages []Stage) error {
	if len(stages) == 0 {
		return fmt.Errorf("%w: no stages", ErrComposition)
	}
	available := FieldUserInput
	written := Field(0)
	names := make(map[string]struct{}, len(stages))
	for i, st := range stages {
		if st.Name == "" {
			return fmt.Errorf("%w: stage %d has no name", ErrComposition, i)
		}
		if _, dup := names[st.Name]; dup {
			return fmt.Errorf("%w: duplicate stage name %q", ErrComposition, st.Name)
		}
		names[st.Name] = struct{}{}
		if st.Run == nil {
			return fmt.Errorf("%w: stage %q has no run function", ErrComposition, st.Name)
		}
		if missing := st.Reads &^ available; missing != 0 {
			return fmt.Errorf("%w: stage %q reads %s before any stage writes it", ErrComposition, st.Name, missing)
		}
		if st.Writes.Has(FieldUserInput) {
			return fmt.Errorf("%w: stage %q writes user_input", ErrComposition, st.Name)
		}
		if dup := st.Writes & written; dup != 0 {
			return fmt.Errorf("%w: stage %q writes %s already owned by an earlier stage", ErrComposition, st.Name, dup)
		}
		if want := State(i + 1); st.Reaches != want {
			return fmt.Errorf("%w: stage %q reaches %s, want %s", ErrComposition, st.Name, st.Reaches, want)
		}
		written |= st.Writes
		available |= st.Writes
	}
	return nil
}
