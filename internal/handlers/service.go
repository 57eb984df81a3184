package handlers

import (
	"context"

	"tender-marketplace/internal/service"
	"tender-marketplace/models"

	"github.com/google/uuid"
)

// Service - операции маркетплейса, которые нужны HTTP-слою.
type Service interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	ListOrganizations(ctx context.Context) ([]models.Organization, error)
	ListResponsibles(ctx context.Context) ([]models.OrganizationResponsible, error)

	CreateTender(ctx context.Context, in service.CreateTenderInput) (*models.Tender, error)
	ListTenders(ctx context.Context, serviceTypes []models.ServiceType, page service.Page) ([]models.Tender, error)
	ListUserTenders(ctx context.Context, username string, page service.Page) ([]models.Tender, error)
	TenderStatus(ctx context.Context, tenderID uuid.UUID, username string) (models.TenderStatus, error)
	UpdateTenderStatus(ctx context.Context, tenderID uuid.UUID, status models.TenderStatus, username string) (*models.Tender, error)
	EditTender(ctx context.Context, tenderID uuid.UUID, username string, patch service.TenderPatch) (*models.Tender, error)
	RollbackTender(ctx context.Context, tenderID uuid.UUID, version int, username string) (*models.Tender, error)

	CreateBid(ctx context.Context, in service.CreateBidInput) (*models.Bid, error)
	ListUserBids(ctx context.Context, username string, page service.Page) ([]models.Bid, error)
	ListTenderBids(ctx context.Context, tenderID uuid.UUID, username string, page service.Page) ([]models.Bid, error)
	BidStatus(ctx context.Context, bidID uuid.UUID, username string) (models.BidStatus, error)
	UpdateBidStatus(ctx context.Context, bidID uuid.UUID, status models.BidStatus, username string) (*models.Bid, error)
	EditBid(ctx context.Context, bidID uuid.UUID, username string, patch service.BidPatch) (*models.Bid, error)
	RollbackBid(ctx context.Context, bidID uuid.UUID, version int, username string) (*models.Bid, error)

	SubmitDecision(ctx context.Context, bidID uuid.UUID, decision models.Decision, username string) (*models.Bid, error)
	SubmitReview(ctx context.Context, bidID uuid.UUID, feedback, username string) (*models.Bid, error)
	ListReviews(ctx context.Context, tenderID uuid.UUID, authorUsername, requesterUsername string, page service.Page) ([]models.BidReview, error)
}

var _ Service = (*service.Service)(nil)
