package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"lifeflow/internal/donation/authz"
	"lifeflow/internal/donation/models"
	"lifeflow/internal/platform/audit"
	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
	"lifeflow/pkg/platform/sentinel"
)

// Create opens a new donation request. Requester identity is stamped from the
// resolved account, never from the payload, and the request always starts
// pending with no donor attached.
func (s *Service) Create(ctx context.Context, claim id.Claim, details models.Details) (*models.DonationRequest, error) {
	ctx, span := s.tracer.Start(ctx, "donation.Create")
	defer span.End()

	acct, err := s.accounts.LoadAccount(ctx, claim.Email)
	if err != nil {
		return nil, err
	}
	if d := authz.Decide(authz.ActionCreate, authz.Input{Role: acct.Role, Blocked: acct.IsBlocked()}); !d.Allow {
		return nil, dErrors.New(dErrors.CodeForbidden, d.Reason)
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}

	now := s.clock()
	req := &models.DonationRequest{
		ID:                id.NewRequestID(),
		RequesterEmail:    acct.Email,
		RequesterName:     acct.Name,
		RecipientName:     details.RecipientName,
		RecipientDistrict: details.RecipientDistrict,
		RecipientUpazila:  details.RecipientUpazila,
		HospitalName:      details.HospitalName,
		FullAddress:       details.FullAddress,
		BloodGroup:        details.BloodGroup,
		DonationDate:      details.DonationDate,
		DonationTime:      details.DonationTime,
		RequestMessage:    details.RequestMessage,
		DonationStatus:    models.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.requests.Insert(ctx, req); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create request")
	}

	if s.metrics != nil {
		s.metrics.RequestsCreated.Inc()
	}
	span.SetAttributes(attribute.String("request.id", req.ID.String()))
	s.logAudit(ctx, audit.EventRequestCreated, acct.Email,
		"request_id", req.ID.String(), "blood_group", req.BloodGroup, "district", req.RecipientDistrict)
	return req, nil
}

// Get loads a single request.
func (s *Service) Get(ctx context.Context, requestID id.RequestID) (*models.DonationRequest, error) {
	return s.loadRequest(ctx, requestID)
}

// Edit overwrites a request's descriptive fields. Status and donor info are
// untouched, and there is no status guard: a done request is still editable
// by anyone holding edit rights.
func (s *Service) Edit(ctx context.Context, claim id.Claim, requestID id.RequestID, details models.Details) (*models.DonationRequest, error) {
	acct, err := s.accounts.LoadAccount(ctx, claim.Email)
	if err != nil {
		return nil, err
	}
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	in := authz.Input{Role: acct.Role, Blocked: acct.IsBlocked(), Owner: req.IsOwner(acct.Email), CurrentStatus: req.DonationStatus}
	if d := authz.Decide(authz.ActionEdit, in); !d.Allow {
		return nil, dErrors.New(dErrors.CodeForbidden, d.Reason)
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}

	if err := s.requests.UpdateDetails(ctx, requestID, details, s.clock()); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update request")
	}

	s.logAudit(ctx, audit.EventRequestEdited, acct.Email, "request_id", requestID.String())
	return s.loadRequest(ctx, requestID)
}

// Donate claims a pending request for the caller. The claim is a
// compare-and-set in the store, so when two donors race exactly one wins and
// the other gets a conflict. Requesters may claim their own request.
func (s *Service) Donate(ctx context.Context, claim id.Claim, requestID id.RequestID) (*models.DonationRequest, error) {
	ctx, span := s.tracer.Start(ctx, "donation.Donate")
	defer span.End()
	span.SetAttributes(attribute.String("request.id", requestID.String()))

	acct, err := s.accounts.LoadAccount(ctx, claim.Email)
	if err != nil {
		return nil, err
	}
	if d := authz.Decide(authz.ActionDonate, authz.Input{Role: acct.Role, Blocked: acct.IsBlocked()}); !d.Allow {
		return nil, dErrors.New(dErrors.CodeForbidden, d.Reason)
	}

	donor := models.DonorInfo{Name: acct.Name, Email: acct.Email}
	claimed, err := s.requests.ClaimForDonation(ctx, requestID, donor, s.clock())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to claim request")
	}
	if !claimed {
		if s.metrics != nil {
			s.metrics.DonationConflicts.Inc()
		}
		return nil, dErrors.New(dErrors.CodeConflict, "request is not available for donation")
	}

	if s.metrics != nil {
		s.metrics.DonationsClaimed.Inc()
	}
	s.logAudit(ctx, audit.EventDonationClaimed, acct.Email, "request_id", requestID.String())
	return s.loadRequest(ctx, requestID)
}

// SetStatus moves a request to the given state. Outside the one owner-only
// gate on closing an inprogress request, any transition between known states
// is accepted, including reopening done or canceled requests. Donor info is
// kept as history on a cancel.
func (s *Service) SetStatus(ctx context.Context, claim id.Claim, requestID id.RequestID, status string) (*models.DonationRequest, error) {
	target, err := models.ParseDonationStatus(status)
	if err != nil {
		return nil, err
	}
	acct, err := s.accounts.LoadAccount(ctx, claim.Email)
	if err != nil {
		return nil, err
	}
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	in := authz.Input{
		Role:          acct.Role,
		Blocked:       acct.IsBlocked(),
		Owner:         req.IsOwner(acct.Email),
		CurrentStatus: req.DonationStatus,
		TargetStatus:  target,
	}
	if d := authz.Decide(authz.ActionSetStatus, in); !d.Allow {
		return nil, dErrors.New(dErrors.CodeForbidden, d.Reason)
	}

	if err := s.requests.UpdateStatus(ctx, requestID, target, s.clock()); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update status")
	}

	s.logAudit(ctx, audit.EventRequestStatusChanged, acct.Email,
		"request_id", requestID.String(), "from", string(req.DonationStatus), "to", string(target))
	return s.loadRequest(ctx, requestID)
}

// Delete removes a request permanently. Owners and admins only; volunteers
// hold edit rights but not delete rights.
func (s *Service) Delete(ctx context.Context, claim id.Claim, requestID id.RequestID) error {
	acct, err := s.accounts.LoadAccount(ctx, claim.Email)
	if err != nil {
		return err
	}
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}

	in := authz.Input{Role: acct.Role, Blocked: acct.IsBlocked(), Owner: req.IsOwner(acct.Email), CurrentStatus: req.DonationStatus}
	if d := authz.Decide(authz.ActionDelete, in); !d.Allow {
		return dErrors.New(dErrors.CodeForbidden, d.Reason)
	}

	if err := s.requests.Delete(ctx, requestID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "request not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete request")
	}

	s.logAudit(ctx, audit.EventRequestDeleted, acct.Email, "request_id", requestID.String())
	return nil
}

func (s *Service) loadRequest(ctx context.Context, requestID id.RequestID) (*models.DonationRequest, error) {
	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "request not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load request")
	}
	return req, nil
}
