package flow

import "github.com/m3rciful/insightbot/insights/domain"

// Step is a position inside a wizard.
type Step string

const (
	StepRegion        Step = "region"
	StepIndustry      Step = "industry"
	StepTheme         Step = "theme"
	StepDescription   Step = "description"
	StepAttachChoice  Step = "attach_choice"
	StepAttachPayload Step = "attach_payload"
	StepViewing       Step = "viewing"
)

// Session is the per-user dialog state. At most one of Create and Search is
// set; a zero Session is idle.
type Session struct {
	Create *Creation `json:"create,omitempty"`
	Search *Search   `json:"search,omitempty"`
}

// Creation tracks the creation wizard.
type Creation struct {
	Step  Step         `json:"step"`
	Draft domain.Draft `json:"draft"`
}

// Search tracks the search wizard and, once viewing, the result cursor.
type Search struct {
	Step    Step             `json:"step"`
	Filter  domain.Filter    `json:"filter"`
	Results []domain.Insight `json:"results,omitempty"`
	Cursor  int              `json:"cursor"`
}

// Idle reports whether no wizard is active.
func (s Session) Idle() bool { return s.Create == nil && s.Search == nil }

// Step returns the active wizard step or "" when idle.
func (s Session) Step() Step {
	switch {
	case s.Create != nil:
		return s.Create.Step
	case s.Search != nil:
		return s.Search.Step
	}
	return ""
}

// Mode names the active wizard for logs.
func (s Session) Mode() string {
	switch {
	case s.Create != nil:
		return "create"
	case s.Search != nil:
		return "search"
	}
	return "idle"
}

func creating(step Step, d domain.Draft) Session {
	return Session{Create: &Creation{Step: step, Draft: d}}
}

func searching(sr Search) Session {
	return Session{Search: &sr}
}

// current returns the record under the cursor.
func (s *Search) current() (domain.Insight, bool) {
	if s == nil || s.Cursor < 0 || s.Cursor >= len(s.Results) {
		return domain.Insight{}, false
	}
	return s.Results[s.Cursor], true
}

// move shifts the cursor by delta, clamped to the result range.
func (s *Search) move(delta int) {
	c := s.Cursor + delta
	if last := len(s.Results) - 1; c > last {
		c = last
	}
	if c < 0 {
		c = 0
	}
	s.Cursor = c
}
