package models

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound возвращается хранилищем, если запись отсутствует.
var ErrNotFound = errors.New("record not found")

// Repository описывает доступ к таблицам маркетплейса.
// Методы *ForUpdate блокируют строку до конца транзакции.
type Repository interface {
	GetEmployee(ctx context.Context, id uuid.UUID) (*Employee, error)
	GetEmployeeByUsername(ctx context.Context, username string) (*Employee, error)
	GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	ListOrganizations(ctx context.Context) ([]Organization, error)
	ListResponsibles(ctx context.Context) ([]OrganizationResponsible, error)
	IsUserResponsibleForOrganization(ctx context.Context, userID, organizationID uuid.UUID) (bool, error)
	CountResponsibles(ctx context.Context, organizationID uuid.UUID) (int, error)

	CreateTender(ctx context.Context, t *Tender) error
	GetTender(ctx context.Context, id uuid.UUID) (*Tender, error)
	GetTenderForUpdate(ctx context.Context, id uuid.UUID) (*Tender, error)
	UpdateTender(ctx context.Context, t *Tender) error
	ListTenders(ctx context.Context, serviceTypes []ServiceType, limit, offset int) ([]Tender, error)
	ListUserTenders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Tender, error)
	AddTenderUser(ctx context.Context, tu TenderUser) error
	SaveTenderVersion(ctx context.Context, v TenderVersion) error
	GetTenderVersion(ctx context.Context, tenderID uuid.UUID, version int) (*TenderVersion, error)

	CreateBid(ctx context.Context, b *Bid) error
	GetBid(ctx context.Context, id uuid.UUID) (*Bid, error)
	GetBidForUpdate(ctx context.Context, id uuid.UUID) (*Bid, error)
	UpdateBid(ctx context.Context, b *Bid) error
	ListAuthorBids(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]Bid, error)
	ListTenderBids(ctx context.Context, tenderID uuid.UUID, limit, offset int) ([]Bid, error)
	HasAuthorBidOnTender(ctx context.Context, tenderID, authorID uuid.UUID) (bool, error)
	SaveBidVersion(ctx context.Context, v BidVersion) error
	GetBidVersion(ctx context.Context, bidID uuid.UUID, version int) (*BidVersion, error)

	AddBidDecision(ctx context.Context, d *BidDecision) error
	// CountBidDecisions считает решения по предложению; пустой only - все решения.
	CountBidDecisions(ctx context.Context, bidID uuid.UUID, only ...Decision) (int, error)

	CreateBidReview(ctx context.Context, r *BidReview) error
	ListAuthorReviews(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]BidReview, error)
}

// Store - Repository с поддержкой транзакций.
// fn выполняется в одной транзакции: ошибка из fn откатывает все записи.
type Store interface {
	Repository
	WithinTx(ctx context.Context, fn func(tx Repository) error) error
}
