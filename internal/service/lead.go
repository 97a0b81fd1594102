package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lumenshop/storefront/internal/domain/model"
	apperrors "github.com/lumenshop/storefront/internal/errors"
	"github.com/lumenshop/storefront/internal/ports"
)

// LeadServiceOptions groups dependencies for LeadService.
type LeadServiceOptions struct {
	API    ports.LeadAPI
	Sink   ports.LeadSink
	Logger *slog.Logger
}

// LeadService captures chat-widget leads: validate, forward to the
// backend, and mirror to the notification sink. The sink is best-effort;
// a lead is never lost because a webhook was down.
type LeadService struct {
	api    ports.LeadAPI
	sink   ports.LeadSink
	logger *slog.Logger
}

// NewLeadService constructs a new LeadService. Sink may be nil.
func NewLeadService(opts LeadServiceOptions) *LeadService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LeadService{api: opts.API, sink: opts.Sink, logger: logger}
}

// Capture validates and records a lead.
func (l *LeadService) Capture(ctx context.Context, lead model.Lead) (model.Lead, error) {
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Contact = strings.TrimSpace(lead.Contact)
	lead.Message = strings.TrimSpace(lead.Message)

	if lead.Contact == "" {
		return model.Lead{}, apperrors.ValidationField("contact", "contact is required")
	}
	if lead.Message == "" {
		return model.Lead{}, apperrors.ValidationField("message", "message is required")
	}
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	saved, err := l.api.SubmitLead(ctx, lead)
	if err != nil {
		return model.Lead{}, err
	}

	if l.sink != nil {
		if sinkErr := l.sink.Deliver(ctx, saved); sinkErr != nil {
			l.logger.WarnContext(ctx, "lead webhook delivery failed", "lead_id", saved.ID, "error", sinkErr)
		}
	}
	return saved, nil
}
