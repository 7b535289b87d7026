// Package authz is the authorization engine for the donation request
// lifecycle. It is pure decision logic: no I/O, no clock, no storage. The
// caller resolves the account and loads the request first, then asks for a
// verdict.
//
// The full matrix, kept in one table so it can be audited in one read:
//
//	action     | blocked check | who may act
//	-----------+---------------+--------------------------------------------
//	Create     | yes           | any active account
//	Donate     | yes           | any active account (the requester included)
//	Edit       | no            | owner, volunteer, admin
//	SetStatus  | no            | owner, volunteer, admin; EXCEPT
//	           |               | inprogress -> done/canceled is owner-only
//	Delete     | no            | owner, admin (volunteer excluded)
//
// The blocked-account check intentionally covers only Create and Donate, and
// SetStatus accepts any target state from any current state outside the one
// owner-only gate. Both are long-standing behaviors callers depend on.
package authz

import (
	"lifeflow/internal/donation/models"
	identity "lifeflow/internal/identity/models"
)

// Action is the operation being attempted on a donation request.
type Action int

const (
	ActionCreate Action = iota
	ActionEdit
	ActionDonate
	ActionSetStatus
	ActionDelete
)

// Input is everything a verdict depends on: the caller's current account
// facts, their relationship to the request, and the transition in question.
type Input struct {
	Role    identity.Role
	Blocked bool
	Owner   bool
	// CurrentStatus is the request's state at decision time. Unset for Create.
	CurrentStatus models.DonationStatus
	// TargetStatus is only meaningful for ActionSetStatus.
	TargetStatus models.DonationStatus
}

// Decision is the verdict with a caller-safe reason for denials.
type Decision struct {
	Allow  bool
	Reason string
}

func allow() Decision             { return Decision{Allow: true} }
func deny(reason string) Decision { return Decision{Allow: false, Reason: reason} }

type rule struct {
	// requireActive denies blocked accounts before any other consideration.
	requireActive bool
	verdict       func(Input) Decision
}

var rules = map[Action]rule{
	ActionCreate: {
		requireActive: true,
		verdict:       func(Input) Decision { return allow() },
	},
	ActionDonate: {
		requireActive: true,
		verdict:       func(Input) Decision { return allow() },
	},
	ActionEdit: {
		verdict: func(in Input) Decision {
			if in.Owner || in.Role == identity.RoleVolunteer || in.Role == identity.RoleAdmin {
				return allow()
			}
			return deny("not authorized to update this request")
		},
	},
	ActionSetStatus: {
		verdict: func(in Input) Decision {
			closing := in.TargetStatus == models.StatusDone || in.TargetStatus == models.StatusCanceled
			if in.CurrentStatus == models.StatusInProgress && closing && !in.Owner {
				return deny("only the request owner can mark as done or canceled")
			}
			if in.Owner || in.Role == identity.RoleVolunteer || in.Role == identity.RoleAdmin {
				return allow()
			}
			return deny("not authorized to update status")
		},
	},
	ActionDelete: {
		verdict: func(in Input) Decision {
			if in.Owner || in.Role == identity.RoleAdmin {
				return allow()
			}
			return deny("not authorized to delete this request")
		},
	},
}

// Decide returns the verdict for an action given the caller's facts.
func Decide(action Action, in Input) Decision {
	r, ok := rules[action]
	if !ok {
		return deny("unknown action")
	}
	if r.requireActive && in.Blocked {
		return deny("blocked accounts cannot perform this action")
	}
	return r.verdict(in)
}
