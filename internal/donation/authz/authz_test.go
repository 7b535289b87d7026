package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lifeflow/internal/donation/models"
	identity "lifeflow/internal/identity/models"
)

func TestBlockedAccountAsymmetry(t *testing.T) {
	blockedOwner := Input{Role: identity.RoleDonor, Blocked: true, Owner: true, CurrentStatus: models.StatusPending}

	assert.False(t, Decide(ActionCreate, blockedOwner).Allow, "blocked accounts cannot create")
	assert.False(t, Decide(ActionDonate, blockedOwner).Allow, "blocked accounts cannot donate")

	// The blocked check covers only Create and Donate; a blocked owner can
	// still edit, move status, and delete their own request.
	assert.True(t, Decide(ActionEdit, blockedOwner).Allow)
	assert.True(t, Decide(ActionSetStatus, Input{Role: identity.RoleDonor, Blocked: true, Owner: true,
		CurrentStatus: models.StatusPending, TargetStatus: models.StatusCanceled}).Allow)
	assert.True(t, Decide(ActionDelete, blockedOwner).Allow)
}

func TestDonateOpenToAnyActiveAccount(t *testing.T) {
	for _, role := range []identity.Role{identity.RoleDonor, identity.RoleVolunteer, identity.RoleAdmin} {
		assert.True(t, Decide(ActionDonate, Input{Role: role, CurrentStatus: models.StatusPending}).Allow, string(role))
	}
	// Nothing stops the requester from claiming their own request.
	assert.True(t, Decide(ActionDonate, Input{Role: identity.RoleDonor, Owner: true, CurrentStatus: models.StatusPending}).Allow)
}

func TestEditRights(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		want bool
	}{
		{"owner donor", Input{Role: identity.RoleDonor, Owner: true}, true},
		{"non-owner donor", Input{Role: identity.RoleDonor}, false},
		{"non-owner volunteer", Input{Role: identity.RoleVolunteer}, true},
		{"non-owner admin", Input{Role: identity.RoleAdmin}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.in.CurrentStatus = models.StatusInProgress // edit has no status guard
			assert.Equal(t, tc.want, Decide(ActionEdit, tc.in).Allow)
		})
	}
}

func TestSetStatusOwnerOnlyGate(t *testing.T) {
	// Closing an inprogress request is reserved for the owner: only the
	// requester can confirm a donation actually happened.
	for _, target := range []models.DonationStatus{models.StatusDone, models.StatusCanceled} {
		in := Input{Role: identity.RoleVolunteer, CurrentStatus: models.StatusInProgress, TargetStatus: target}
		assert.False(t, Decide(ActionSetStatus, in).Allow, "volunteer barred from inprogress->%s", target)

		in.Role = identity.RoleAdmin
		assert.False(t, Decide(ActionSetStatus, in).Allow, "admin barred from inprogress->%s", target)

		in = Input{Role: identity.RoleDonor, Owner: true, CurrentStatus: models.StatusInProgress, TargetStatus: target}
		assert.True(t, Decide(ActionSetStatus, in).Allow, "owner may close inprogress->%s", target)
	}
}

func TestSetStatusGeneralRule(t *testing.T) {
	// Outside the owner-only gate the model is permissive: owner, volunteer,
	// and admin may move any state to any state, including reopening done.
	volunteer := Input{Role: identity.RoleVolunteer, CurrentStatus: models.StatusPending, TargetStatus: models.StatusInProgress}
	assert.True(t, Decide(ActionSetStatus, volunteer).Allow)

	reopen := Input{Role: identity.RoleAdmin, CurrentStatus: models.StatusDone, TargetStatus: models.StatusPending}
	assert.True(t, Decide(ActionSetStatus, reopen).Allow, "no terminal-state guard")

	stranger := Input{Role: identity.RoleDonor, CurrentStatus: models.StatusPending, TargetStatus: models.StatusCanceled}
	assert.False(t, Decide(ActionSetStatus, stranger).Allow)
}

func TestDeleteExcludesVolunteers(t *testing.T) {
	assert.True(t, Decide(ActionDelete, Input{Role: identity.RoleDonor, Owner: true}).Allow)
	assert.True(t, Decide(ActionDelete, Input{Role: identity.RoleAdmin}).Allow)
	assert.False(t, Decide(ActionDelete, Input{Role: identity.RoleVolunteer}).Allow,
		"volunteers have edit rights but not delete rights")
	assert.False(t, Decide(ActionDelete, Input{Role: identity.RoleDonor}).Allow)
}

func TestDenialsCarryReasons(t *testing.T) {
	d := Decide(ActionDelete, Input{Role: identity.RoleVolunteer})
	assert.False(t, d.Allow)
	assert.NotEmpty(t, d.Reason)
}
