package models

import (
	"fmt"
	"time"
)

// ClearResult is returned by a successful clear.
type ClearResult struct {
	DeletedCount int64  `json:"deleted_count"`
	AuditID      string `json:"audit_id"`
}

// ClearAudit records who cleared a group and why.
type ClearAudit struct {
	ID           string     `db:"id" json:"id"`
	MasterType   MasterType `db:"master_type" json:"master_type"`
	GroupID      int64      `db:"group_id" json:"group_id"`
	Username     string     `db:"username" json:"username"`
	Reason       string     `db:"reason" json:"reason"`
	DeletedCount int64      `db:"deleted_count" json:"deleted_count"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// ClearStep is a state of the clear flow.
type ClearStep string

const (
	StepIdle        ClearStep = "idle"
	StepConfirm1    ClearStep = "confirm_1"
	StepConfirm2    ClearStep = "confirm_2"
	StepConfirm3    ClearStep = "confirm_3"
	StepCredentials ClearStep = "credentials"
	StepDone        ClearStep = "done"
)

// Captcha is a two-operand subtraction challenge. A >= B so the answer is never negative.
type Captcha struct {
	A int `json:"a"`
	B int `json:"b"`
}

func (c Captcha) Question() string {
	return fmt.Sprintf("%d - %d = ?", c.A, c.B)
}

func (c Captcha) Answer() int {
	return c.A - c.B
}

// ClearState is one operator's progress through the clear flow.
type ClearState struct {
	FlowID       string     `json:"flow_id"`
	MasterType   MasterType `json:"master_type"`
	GroupID      int64      `json:"group_id"`
	Step         ClearStep  `json:"step"`
	Captcha      Captcha    `json:"captcha"`
	Username     string     `json:"username,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
	DeletedCount int64      `json:"deleted_count"`
	Actor        string     `json:"actor"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ClearView is what the operator sees of a clear flow.
type ClearView struct {
	FlowID       string    `json:"flow_id"`
	Step         ClearStep `json:"step"`
	Question     string    `json:"question,omitempty"`
	Message      string    `json:"message,omitempty"`
	DeletedCount int64     `json:"deleted_count,omitempty"`
	NoData       bool      `json:"no_data,omitempty"`
}

// View renders the state for the operator.
func (s ClearState) View() ClearView {
	v := ClearView{FlowID: s.FlowID, Step: s.Step, Message: s.LastError, DeletedCount: s.DeletedCount}
	switch s.Step {
	case StepConfirm1, StepConfirm2, StepConfirm3:
		v.Question = s.Captcha.Question()
	}
	return v
}
