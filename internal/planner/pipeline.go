// Package planner runs the fixed sequence of planning stages over one Record.
package planner

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"eventplanner/internal/logging"
	"eventplanner/internal/observability"
)

// ErrUndeclaredWrite is returned when a stage assigns a field it did not declare.
var ErrUndeclaredWrite = errors.New("stage wrote undeclared field")

// Pipeline is a validated, ordered list of stages.
type Pipeline struct {
	stages []Stage
	log    zerolog.Logger
	tracer trace.Tracer
}

// New validates the stage list and returns a pipeline. Errors wrap ErrComposition.
func New(stages ...Stage) (*Pipeline, error) {
	if err := validate(stages); err != nil {
		return nil, err
	}
	return &Pipeline{
		stages: append([]Stage(nil), stages...),
		log:    logging.New("planner"),
		tracer: observability.Tracer("planner"),
	}, nil
}

// Stages returns the stage names in execution order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = st.Name
	}
	return names
}

// Run threads a new Record through every stage in order. A stage error stops
// the run; the partial record is returned together with the error.
func (p *Pipeline) Run(ctx context.Context, userInput string) (*Record, error) {
	r := &Record{
		RunID:     uuid.NewString(),
		UserInput: userInput,
		State:     Start,
		Messages:  []string{},
		Trace:     make([]StageTrace, 0, len(p.stages)),
	}
	log := p.log.With().Str("run_id", r.RunID).Logger()
	ctx = log.WithContext(ctx)

	ctx, runSpan := p.tracer.Start(ctx, "planner.run", trace.WithAttributes(attribute.String("run_id", r.RunID)))
	defer runSpan.End()

	for _, st := range p.stages {
		if err := p.runStage(ctx, st, r); err != nil {
			observability.RecordError(runSpan, err)
			log.Error().Err(err).Str("stage", st.Name).Msg("planning run failed")
			return r, err
		}
	}
	log.Info().Str("state", r.State.String()).Bool("plan", r.FinalPlan != nil).Msg("planning run finished")
	return r, nil
}

func (p *Pipeline) runStage(ctx context.Context, st Stage, r *Record) error {
	ctx, span := p.tracer.Start(ctx, "planner.stage."+st.Name, trace.WithAttributes(
		attribute.String("stage", st.Name),
		attribute.String("reads", st.Reads.String()),
		attribute.String("writes", st.Writes.String()),
	))
	defer span.End()
	log := zerolog.Ctx(ctx).With().Str("stage", st.Name).Logger()
	ctx = log.WithContext(ctx)

	before := snapshot(r)
	start := time.Now()
	out, err := st.Run(ctx, r)
	elapsed := time.Since(start)
	if err != nil {
		observability.RecordError(span, err)
		r.Trace = append(r.Trace, StageTrace{Stage: st.Name, Status: StatusFailed, Duration: elapsed, Error: err.Error()})
		return fmt.Errorf("stage %s: %w", st.Name, err)
	}
	if extra := before.changed(snapshot(r)) &^ st.Writes; extra != 0 {
		err := fmt.Errorf("%w: stage %s assigned %s", ErrUndeclaredWrite, st.Name, extra)
		observability.RecordError(span, err)
		r.Trace = append(r.Trace, StageTrace{Stage: st.Name, Status: StatusFailed, Duration: elapsed, Error: err.Error()})
		return err
	}
	if len(r.Messages) != before.messages {
		err := fmt.Errorf("%w: stage %s appended to messages", ErrUndeclaredWrite, st.Name)
		observability.RecordError(span, err)
		r.Trace = append(r.Trace, StageTrace{Stage: st.Name, Status: StatusFailed, Duration: elapsed, Error: err.Error()})
		return err
	}
	if out.Status == "" {
		out.Status = StatusCompleted
	}

	r.Messages = append(r.Messages, out.Message)
	r.State = st.Reaches
	r.Trace = append(r.Trace, StageTrace{Stage: st.Name, Status: out.Status, Duration: elapsed})
	span.SetAttributes(attribute.String("status", string(out.Status)))

	ev := log.Debug()
	if out.Status == StatusDegraded {
		ev = log.Warn()
	}
	ev.Str("status", string(out.Status)).Dur("elapsed", elapsed).Msg(out.Message)
	return nil
}

// recordSnapshot captures the identity of every field so assignments can be detected.
type recordSnapshot struct {
	userInput string
	refs      [9]uintptr
	lens      [9]int
	messages  int
}

func snapshot(r *Record) recordSnapshot {
	s := recordSnapshot{userInput: r.UserInput, messages: len(r.Messages)}
	vals := [...]any{nil, r.Intent, r.Extraction, r.Retrieved, r.EnhancedPlan, r.Budget, r.GuestList, r.Schedule, r.FinalPlan}
	for i, v := range vals {
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		s.refs[i] = rv.Pointer()
		if rv.Kind() == reflect.Slice {
			s.lens[i] = rv.Len()
		}
	}
	return s
}

// changed returns the fields whose identity differs between s and o.
func (s recordSnapshot) changed(o recordSnapshot) Field {
	var f Field
	if s.userInput != o.userInput {
		f |= FieldUserInput
	}
	for i := 1; i < len(s.refs); i++ {
		if s.refs[i] != o.refs[i] || s.lens[i] != o.lens[i] {
			f |= 1 << i
		}
	}
	return f
}
