package service

import (
	"context"
	"errors"
	"fmt"

	"tender-marketplace/models"

	"github.com/google/uuid"
)

func resolveEmployee(ctx context.Context, repo models.Repository, username string) (*models.Employee, error) {
	e, err := repo.GetEmployeeByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrUnauthenticated, username)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve employee: %w", err)
	}
	return e, nil
}

// resolveAuthor проверяет, что автор предложения существует.
func resolveAuthor(ctx context.Context, repo models.Repository, authorType models.AuthorType, authorID uuid.UUID) error {
	var err error
	switch authorType {
	case models.AuthorOrganization:
		_, err = repo.GetOrganization(ctx, authorID)
	case models.AuthorUser:
		_, err = repo.GetEmployee(ctx, authorID)
	default:
		return fmt.Errorf("%w: author type %q", ErrInvalidInput, authorType)
	}
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", ErrUnauthenticated, authorType, authorID)
	}
	if err != nil {
		return fmt.Errorf("resolve author: %w", err)
	}
	return nil
}

// authorize - единственная проверка доступа: пользователь ответственный за организацию.
func authorize(ctx context.Context, repo models.Repository, userID, organizationID uuid.UUID) error {
	ok, err := repo.IsUserResponsibleForOrganization(ctx, userID, organizationID)
	if err != nil {
		return fmt.Errorf("check responsible: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: user %s is not responsible for organization %s", ErrUnauthorized, userID, organizationID)
	}
	return nil
}

// tenderStatusChangeNeedsAuthorization: смена статуса опубликованного тендера
// не требует прав ответственного. Правило держится здесь, чтобы поменять его в одном месте.
func tenderStatusChangeNeedsAuthorization(current models.TenderStatus) bool {
	return current == models.TenderCreated || current == models.TenderClosed
}

// authorizeBidActor пускает автора предложения, иначе - ответственного
// за организацию-автора.
func authorizeBidActor(ctx context.Context, repo models.Repository, user *models.Employee, bid *models.Bid) error {
	if bid.AuthorType == models.AuthorUser && bid.AuthorID == user.ID {
		return nil
	}
	if bid.AuthorType == models.AuthorOrganization {
		return authorize(ctx, repo, user.ID, bid.AuthorID)
	}
	return fmt.Errorf("%w: user %s is not the author of bid %s", ErrUnauthorized, user.ID, bid.ID)
}

func loadTender(ctx context.Context, repo models.Repository, id uuid.UUID, forUpdate bool) (*models.Tender, error) {
	get := repo.GetTender
	if forUpdate {
		get = repo.GetTenderForUpdate
	}
	t, err := get(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: tender %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get tender: %w", err)
	}
	return t, nil
}

func loadBid(ctx context.Context, repo models.Repository, id uuid.UUID, forUpdate bool) (*models.Bid, error) {
	get := repo.GetBid
	if forUpdate {
		get = repo.GetBidForUpdate
	}
	b, err := get(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("%w: bid %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get bid: %w", err)
	}
	return b, nil
}

func (s *Service) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	return s.store.ListEmployees(ctx)
}

func (s *Service) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	return s.store.ListOrganizations(ctx)
}

func (s *Service) ListResponsibles(ctx context.Context) ([]models.OrganizationResponsible, error) {
	return s.store.ListResponsibles(ctx)
}
