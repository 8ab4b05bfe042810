package onboarding

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/teamauth/pkg/logger"
	"github.com/dmitrymomot/teamauth/pkg/statemachine"
)

// State of the prompt for the current user and session.
type State string

const (
	Unevaluated State = "unevaluated"
	Shown       State = "shown"
	Suppressed  State = "suppressed"
	Dismissed   State = "dismissed"
)

// Reason explains why Evaluate reached its state.
type Reason string

const (
	ReasonEligible        Reason = "eligible"
	ReasonReturningUser   Reason = "returning_user"
	ReasonNotFirstLogin   Reason = "not_first_login"
	ReasonProfileComplete Reason = "profile_complete"
	ReasonDismissed       Reason = "dismissed"
	ReasonAlreadyShown    Reason = "already_shown"
	ReasonUnreadable      Reason = "unreadable"
)

type trigger string

const (
	triggerEvaluate    trigger = "evaluate"
	triggerResume      trigger = "resume"
	triggerSuppress    trigger = "suppress"
	triggerDismiss     trigger = "dismiss"
	triggerEditProfile trigger = "edit_profile"
)

// Machine tracks the prompt for one browsing session. It is not meant to be
// shared between sessions; create one per session over the same durable Store.
type Machine struct {
	durable Store
	session Store
	fsm     *statemachine.Machine[State, trigger]
	logger  *slog.Logger

	userID string
	reason Reason
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger configures the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a Machine in state Unevaluated.
func New(durable, session Store, opts ...Option) *Machine {
	m := &Machine{
		durable: durable,
		session: session,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.fsm = statemachine.MustNew(Unevaluated,
		statemachine.WithTransition(Unevaluated, Shown, triggerEvaluate,
			statemachine.WithGuard[State, trigger](eligible),
			statemachine.WithAction[State, trigger](m.markShown),
		),
		statemachine.WithTransition[State, trigger](Unevaluated, Shown, triggerResume),
		statemachine.WithTransition[State, trigger](Unevaluated, Suppressed, triggerEvaluate),
		statemachine.WithTransition[State, trigger](Unevaluated, Suppressed, triggerSuppress),
		statemachine.WithTransition(Shown, Dismissed, triggerDismiss,
			statemachine.WithAction[State, trigger](m.recordDismissal),
		),
		statemachine.WithTransition(Shown, Dismissed, triggerEditProfile,
			statemachine.WithAction[State, trigger](m.recordDismissal),
		),
	)
	return m
}

// State returns the current state.
func (m *Machine) State() State {
	return m.fsm.Current()
}

// Reason returns why the last evaluation ended where it did.
func (m *Machine) Reason() Reason {
	return m.reason
}

// Evaluate decides whether the prompt renders for p. Once decided, repeated
// calls for the same user return the current state without re-reading the
// stores, so a Shown prompt is never shown twice and a Dismissed or
// Suppressed one never comes back. A different user starts a fresh decision.
//
// The returned state is always usable. A non-nil error reports a store that
// could not be read or written; the state is Suppressed in that case.
func (m *Machine) Evaluate(ctx context.Context, p Profile) (State, error) {
	if cur := m.fsm.Current(); cur != Unevaluated {
		if p.ID == m.userID {
			return cur, nil
		}
		m.fsm.Reset()
	}

	reason, err := m.decide(p)
	m.userID = p.ID
	m.reason = reason

	if fireErr := m.fsm.Fire(ctx, triggerEvaluate, reason); fireErr != nil {
		// Without the session marker the prompt could repeat on the next evaluation.
		m.reason = ReasonUnreadable
		err = errors.Join(err, fireErr)
		if sErr := m.fsm.Fire(ctx, triggerSuppress, nil); sErr != nil {
			err = errors.Join(err, sErr)
		}
	}

	state := m.fsm.Current()
	m.logger.DebugContext(ctx, "onboarding evaluated",
		logger.Component("onboarding"),
		logger.UserID(p.ID),
		slog.String("state", string(state)),
		slog.String("reason", string(m.reason)),
		logger.Error(err),
	)
	return state, err
}

// Resume picks up a prompt that another Machine showed earlier in the same
// session, for clients whose session outlives a single process. It moves to
// Shown without marking anything, and returns ErrNotShown unless the session
// marker for p is set and the prompt is still open: not dismissed, profile
// not yet complete.
func (m *Machine) Resume(ctx context.Context, p Profile) error {
	if p.ID == "" {
		return ErrMissingUser
	}
	if cur := m.fsm.Current(); cur != Unevaluated {
		if p.ID == m.userID {
			if cur == Shown {
				return nil
			}
			return ErrNotShown
		}
		m.fsm.Reset()
	}
	if p.IsProfileComplete {
		return ErrNotShown
	}

	if _, ok, err := m.durable.Get(KeyDismissed); err != nil {
		return err
	} else if ok {
		return ErrNotShown
	}
	if _, ok, err := m.session.Get(SessionKey(p.ID)); err != nil {
		return err
	} else if !ok {
		return ErrNotShown
	}

	if err := m.fsm.Fire(ctx, triggerResume, nil); err != nil {
		return err
	}
	m.userID = p.ID
	m.reason = ReasonEligible
	m.logger.DebugContext(ctx, "onboarding resumed",
		logger.Component("onboarding"),
		logger.UserID(p.ID),
	)
	return nil
}

// Remember stores p as the durable last-seen snapshot. Call it after the
// first Evaluate of a visit; its presence marks every later visit as returning.
func (m *Machine) Remember(p Profile) error {
	if p.ID == "" {
		return ErrMissingUser
	}
	return writeSnapshot(m.durable, p)
}

// Dismiss closes a Shown prompt. The dismissed flag and the session marker
// are both written before it returns.
func (m *Machine) Dismiss(ctx context.Context) error {
	return m.close(ctx, triggerDismiss)
}

// EditProfile closes a Shown prompt because the user went to the profile editor.
func (m *Machine) EditProfile(ctx context.Context) error {
	return m.close(ctx, triggerEditProfile)
}

func (m *Machine) close(ctx context.Context, t trigger) error {
	err := m.fsm.Fire(ctx, t, nil)
	if errors.Is(err, statemachine.ErrNoTransition) {
		return ErrNotShown
	}
	if err != nil {
		return err
	}
	m.logger.DebugContext(ctx, "onboarding dismissed",
		logger.Component("onboarding"),
		logger.UserID(m.userID),
		logger.Event(string(t)),
	)
	return nil
}

// decide checks the inputs in a fixed order: the durable snapshot comes
// first so returning users stay suppressed even if the session tier was wiped.
func (m *Machine) decide(p Profile) (Reason, error) {
	if p.ID == "" {
		return ReasonUnreadable, ErrMissingUser
	}

	snap, err := readSnapshot(m.durable)
	if err != nil {
		return ReasonUnreadable, err
	}
	if snap != nil && snap.ID == p.ID {
		return ReasonReturningUser, nil
	}

	if !p.IsFirstLogin {
		return ReasonNotFirstLogin, nil
	}
	if p.IsProfileComplete {
		return ReasonProfileComplete, nil
	}

	if _, ok, err := m.durable.Get(KeyDismissed); err != nil {
		return ReasonUnreadable, err
	} else if ok {
		return ReasonDismissed, nil
	}

	if _, ok, err := m.session.Get(SessionKey(p.ID)); err != nil {
		return ReasonUnreadable, err
	} else if ok {
		return ReasonAlreadyShown, nil
	}

	return ReasonEligible, nil
}

func eligible(_ context.Context, _ State, _ trigger, data any) bool {
	reason, _ := data.(Reason)
	return reason == ReasonEligible
}

func (m *Machine) markShown(context.Context, State, State, trigger, any) error {
	return m.session.Set(SessionKey(m.userID), "true")
}

func (m *Machine) recordDismissal(context.Context, State, State, trigger, any) error {
	return errors.Join(
		m.durable.Set(KeyDismissed, "true"),
		m.session.Set(SessionKey(m.userID), "true"),
	)
}
