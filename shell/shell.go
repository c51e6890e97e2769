package shell

import (
	"math"
	"time"

	"github.com/ruapotato/Flick-sub004/gesture"
	"github.com/ruapotato/Flick-sub004/utils"
	"github.com/sirupsen/logrus"
)

// DefaultAnimationDuration is how long a released transition takes to finish or reverse
const DefaultAnimationDuration = 200 * time.Millisecond

// State is a snapshot of the shell for renderers and remote clients
type State struct {
	View       View            `json:"view"`
	Transition TransitionState `json:"transition"`
	From       View            `json:"from"`
	To         View            `json:"to"`
	Progress   float64         `json:"progress"`
	Edge       gesture.Edge    `json:"edge"`
}

// Shell is the view state machine driven by gesture events and actions.
// It is not safe for concurrent use.
type Shell struct {
	log logrus.FieldLogger

	view View

	transition TransitionState
	from       View
	to         View
	edge       gesture.Edge
	progress   float64

	animation time.Duration
	instant   bool
}

type Option func(*Shell)

// WithInitialView sets the view the shell starts in (home by default)
func WithInitialView(v View) Option {
	return func(s *Shell) {
		s.view = v
	}
}

// WithAnimationDuration sets the length of the release animation
func WithAnimationDuration(d time.Duration) Option {
	return func(s *Shell) {
		s.animation = d
	}
}

// WithInstantTransitions makes a released gesture commit or revert immediately,
// without an animation phase
func WithInstantTransitions() Option {
	return func(s *Shell) {
		s.instant = true
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Shell) {
		s.log = log
	}
}

func New(opts ...Option) *Shell {
	s := &Shell{
		log:       utils.Logger().WithField("component", "shell"),
		view:      ViewHome,
		animation: DefaultAnimationDuration,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.animation <= 0 {
		s.instant = true
	}
	s.from, s.to = s.view, s.view

	s.log.WithFields(logrus.Fields{"view": s.view, "instant": s.instant}).Info("shell initialized")
	return s
}

func (s *Shell) CurrentView() View {
	return s.view
}

// IsTransitioning reports whether any transition phase is active
func (s *Shell) IsTransitioning() bool {
	return s.transition != TransitionNone
}

func (s *Shell) State() State {
	return State{
		View:       s.view,
		Transition: s.transition,
		From:       s.from,
		To:         s.to,
		Progress:   s.progress,
		Edge:       s.edge,
	}
}

// Visual is the color the renderer should show this frame
func (s *Shell) Visual() Color {
	if s.transition == TransitionNone {
		return ViewColor(s.view)
	}
	return Lerp(ViewColor(s.from), ViewColor(s.to), s.progress)
}

func (s *Shell) fields() logrus.Fields {
	return logrus.Fields{
		"view":     s.view,
		"from":     s.from,
		"to":       s.to,
		"phase":    s.transition,
		"progress": s.progress,
		"edge":     s.edge,
	}
}

// reset drops any transition, leaving the current view as it is
func (s *Shell) reset() {
	s.transition = TransitionNone
	s.from, s.to = s.view, s.view
	s.edge = gesture.EdgeNone
	s.progress = 0
}

func (s *Shell) commit() {
	s.view = s.to
	s.reset()
	s.log.WithFields(s.fields()).Info("transition complete")
}

// finish completes an animating or canceling transition immediately
func (s *Shell) finish() {
	switch s.transition {
	case TransitionAnimating:
		s.commit()
	case TransitionCanceling:
		s.reset()
		s.log.WithFields(s.fields()).Debug("transition reverted")
	}
}

// HandleGesture feeds one gesture event into the state machine. It returns
// true when the shell consumed the event; unconsumed events belong to the
// focused window.
func (s *Shell) HandleGesture(event gesture.Event) bool {
	switch event.Type {
	case gesture.TypeEdgeSwipeStart:
		if s.transition == TransitionStarting {
			s.log.WithFields(s.fields()).WithField("ignored", event.Edge).Debug("edge swipe start during a tracked gesture")
			return false
		}
		s.finish()

		target := TransitionTarget(s.view, event.Edge)
		if target == s.view {
			return false
		}

		s.transition = TransitionStarting
		s.from = s.view
		s.to = target
		s.edge = event.Edge
		s.progress = 0
		s.log.WithFields(s.fields()).Info("transition starting")
		return true

	case gesture.TypeEdgeSwipeUpdate:
		if s.transition != TransitionStarting || event.Edge != s.edge {
			return false
		}
		s.progress = math.Min(event.Progress, 1)
		s.log.WithFields(s.fields()).Debug("transition progress")
		return true

	case gesture.TypeEdgeSwipeEnd:
		if s.transition != TransitionStarting || event.Edge != s.edge {
			return false
		}

		if event.Completed {
			if s.instant {
				s.commit()
				return true
			}
			s.transition = TransitionAnimating
			s.log.WithFields(s.fields()).Info("transition animating")
			return true
		}

		if s.instant {
			s.reset()
			s.log.WithFields(s.fields()).Info("transition canceled")
			return true
		}
		s.transition = TransitionCanceling
		s.log.WithFields(s.fields()).Info("transition canceling")
		return true
	}

	return false
}

// Abort abandons a gesture-driven transition whose touch went away without an end
func (s *Shell) Abort() bool {
	if s.transition != TransitionStarting {
		return false
	}

	if s.instant {
		s.reset()
	} else {
		s.transition = TransitionCanceling
	}
	s.log.WithFields(s.fields()).Info("transition aborted")
	return true
}

func actionTarget(current View, action gesture.Action) (View, bool) {
	switch action {
	case gesture.ActionGoHome:
		return ViewHome, true
	case gesture.ActionCloseApp:
		if current == ViewApp {
			return ViewHome, true
		}
	case gesture.ActionQuickSettings:
		return ViewQuickSettings, true
	case gesture.ActionAppSwitcher:
		return ViewAppSwitcher, true
	}
	return current, false
}

// HandleAction applies an action that is not tied to a tracked gesture. It is
// idempotent and returns whether the current view changed. The lock view
// ignores actions; only GoToView leaves it.
func (s *Shell) HandleAction(action gesture.Action) bool {
	if s.view == ViewLock {
		if action != gesture.ActionNone {
			s.log.WithField("action", action).Debug("action ignored while locked")
		}
		return false
	}

	target, ok := actionTarget(s.view, action)
	if !ok || target == s.view {
		return false
	}

	previous := s.view
	s.view = target

	switch s.transition {
	case TransitionAnimating:
		// keep animating, towards the new view
		s.to = target
	case TransitionStarting, TransitionCanceling:
		s.reset()
	}

	s.log.WithFields(s.fields()).WithFields(logrus.Fields{
		"action":   action,
		"previous": previous,
	}).Info("view changed by action")
	return true
}

// GoToView switches view unconditionally, dropping any transition. It is the
// only way out of the lock view.
func (s *Shell) GoToView(v View) bool {
	changed := v != s.view
	s.view = v
	s.reset()

	if changed {
		s.log.WithFields(s.fields()).Info("view set")
	}
	return changed
}

// Update advances the release animation by delta. It is called once per frame.
func (s *Shell) Update(delta time.Duration) {
	if delta <= 0 {
		return
	}

	switch s.transition {
	case TransitionAnimating:
		s.progress += delta.Seconds() / s.animation.Seconds()
		if s.progress >= 1 {
			s.commit()
		}

	case TransitionCanceling:
		s.progress -= delta.Seconds() / s.animation.Seconds()
		if s.progress <= 0 {
			s.reset()
			s.log.WithFields(s.fields()).Info("transition reverted")
		}
	}
}
