package schtasks

import (
	"context"

	"datalys2/pkg/logx"
)

// Action reports which path Ensure took.
type Action int

const (
	// ActionKept: the task was already registered and Force was off.
	ActionKept Action = iota
	// ActionCreated: no prior registration existed; one was created.
	ActionCreated
	// ActionUpdated: a registration existed and was overwritten.
	ActionUpdated
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionUpdated:
		return "updated"
	default:
		return "kept"
	}
}

// Ensure makes sure spec is registered, creating or updating only when
// needed. A program calls this at startup: run by hand it registers itself,
// run by the scheduler it finds the existing registration and moves on.
//
// The protocol is check-then-act, not transactional. Two callers racing on
// the same unregistered name can both observe "missing" and both create; the
// later create overwrites the earlier. That is harmless for identical specs
// and non-deterministic for divergent specs under one name — the underlying
// scheduler offers no primitive to close that window.
func (s *Scheduler) Ensure(ctx context.Context, spec Spec) (Action, error) {
	name := Qualify(spec.Name)

	_, exists, err := s.Query(ctx, spec.Name)
	if err != nil {
		return ActionKept, err
	}
	if exists && !spec.Force {
		s.log.Debug("task already scheduled", logx.String("task", name))
		return ActionKept, nil
	}

	// Either nothing is registered or the caller asked for an overwrite;
	// the decision to (re)write has been made, so create always forces.
	create := spec
	create.Force = true
	if err := s.Create(ctx, create); err != nil {
		return ActionKept, err
	}
	if exists {
		return ActionUpdated, nil
	}
	return ActionCreated, nil
}
