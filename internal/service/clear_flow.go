package service

import (
	"fmt"
	"masterdata-web/internal/models"
	"strings"
)

// ClearEvent is an operator action or an outcome fed into the clear flow.
type ClearEvent interface {
	clearEvent()
}

type StartEvent struct{}

// AnswerEvent answers a confirmation prompt. Yes=false backs out of the flow.
type AnswerEvent struct {
	Yes           bool
	CaptchaAnswer int
}

type CancelEvent struct{}

// SubmitCredentialsEvent records who is clearing and why. The password is never stored.
type SubmitCredentialsEvent struct {
	Username string
	Reason   string
}

type AuthFailedEvent struct {
	Message string
}

type ClearedEvent struct {
	Count int64
}

func (StartEvent) clearEvent()             {}
func (AnswerEvent) clearEvent()            {}
func (CancelEvent) clearEvent()            {}
func (SubmitCredentialsEvent) clearEvent() {}
func (AuthFailedEvent) clearEvent()        {}
func (ClearedEvent) clearEvent()           {}

var nextConfirm = map[models.ClearStep]models.ClearStep{
	models.StepConfirm1: models.StepConfirm2,
	models.StepConfirm2: models.StepConfirm3,
	models.StepConfirm3: models.StepCredentials,
}

// Transition applies ev to state. It is pure apart from drawing captchas from next.
// Events that make no sense at the current step return ErrInvalidTransition and leave the
// state untouched.
func Transition(state models.ClearState, ev ClearEvent, next func() models.Captcha) (models.ClearState, error) {
	out := state
	out.LastError = ""

	switch e := ev.(type) {
	case CancelEvent:
		return reset(state), nil

	case StartEvent:
		if state.Step != models.StepIdle && state.Step != "" {
			return state, invalid(state, ev)
		}
		out.Step = models.StepConfirm1
		out.Captcha = next()
		return out, nil

	case AnswerEvent:
		following, ok := nextConfirm[state.Step]
		if !ok {
			return state, invalid(state, ev)
		}
		if !e.Yes {
			return reset(state), nil
		}
		if e.CaptchaAnswer != state.Captcha.Answer() {
			out.Captcha = next()
			out.LastError = "Incorrect answer, please try again"
			return out, nil
		}
		out.Step = following
		out.Captcha = models.Captcha{}
		if following != models.StepCredentials {
			out.Captcha = next()
		}
		return out, nil

	case SubmitCredentialsEvent:
		if state.Step != models.StepCredentials {
			return state, invalid(state, ev)
		}
		out.Username = strings.TrimSpace(e.Username)
		out.Reason = strings.TrimSpace(e.Reason)
		return out, nil

	case AuthFailedEvent:
		if state.Step != models.StepCredentials {
			return state, invalid(state, ev)
		}
		out.LastError = e.Message
		return out, nil

	case ClearedEvent:
		if state.Step != models.StepCredentials {
			return state, invalid(state, ev)
		}
		out.Step = models.StepDone
		out.DeletedCount = e.Count
		return out, nil
	}
	return state, invalid(state, ev)
}

// reset discards everything the operator entered.
func reset(state models.ClearState) models.ClearState {
	return models.ClearState{
		FlowID:     state.FlowID,
		MasterType: state.MasterType,
		GroupID:    state.GroupID,
		Actor:      state.Actor,
		Step:       models.StepIdle,
	}
}

func invalid(state models.ClearState, ev ClearEvent) error {
	return fmt.Errorf("%w: %T at step %s", models.ErrInvalidTransition, ev, state.Step)
}
