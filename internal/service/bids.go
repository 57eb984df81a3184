package service

import (
	"context"
	"fmt"

	"tender-marketplace/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateBidInput struct {
	Name        string
	Description string
	TenderID    uuid.UUID
	AuthorType  models.AuthorType
	AuthorID    uuid.UUID
}

// BidPatch - частичное изменение предложения.
type BidPatch struct {
	Name        *string
	Description *string
}

func (p BidPatch) apply(b *models.Bid) {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
}

// CreateBid создаёт предложение на опубликованный тендер.
func (s *Service) CreateBid(ctx context.Context, in CreateBidInput) (*models.Bid, error) {
	if !in.AuthorType.Valid() {
		return nil, fmt.Errorf("%w: author type %q", ErrInvalidInput, in.AuthorType)
	}

	var bid *models.Bid
	err := s.store.WithinTx(ctx, func(tx models.Repository) error {
		t, err := loadTender(ctx, tx, in.TenderID, false)
		if err != nil {
			return err
		}
		if err := resolveAuthor(ctx, tx, in.AuthorType, in.AuthorID); err != nil {
			return err
		}
		if t.Status != models.TenderPublished {
			return fmt.Errorf("%w: tender %s is not published", ErrUnauthorized, t.ID)
		}

		b := &models.Bid{
			ID:          uuid.New(),
			Name:        in.Name,
			Description: in.Description,
			Status:      models.BidCreated,
			TenderID:    t.ID,
			AuthorType:  in.AuthorType,
			AuthorID:    in.AuthorID,
			Version:     1,
		}
		if err := tx.CreateBid(ctx, b); err != nil {
			return fmt.Errorf("create bid: %w", err)
		}
		if err := bidHistory(tx, b.ID).record(ctx, b); err != nil {
			return err
		}
		bid = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bid created",
		zap.Stringer("bid_id", bid.ID),
		zap.Stringer("tender_id", bid.TenderID))
	return bid, nil
}

// ListUserBids возвращает предложения, автором которых является пользователь.
func (s *Service) ListUserBids(ctx context.Context, username string, page Page) ([]models.Bid, error) {
	user, err := resolveEmployee(ctx, s.store, username)
	if err != nil {
		return nil, err
	}
	bids, err := s.store.ListAuthorBids(ctx, user.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list user bids: %w", err)
	}
	return bids, nil
}

// ListTenderBids доступен ответственным за организацию тендера
// и авторам предложений на этот тендер.
func (s *Service) ListTenderBids(ctx context.Context, tenderID uuid.UUID, username string, page Page) ([]models.Bid, error) {
	t, err := loadTender(ctx, s.store, tenderID, false)
	if err != nil {
		return nil, err
	}
	user, err := resolveEmployee(ctx, s.store, username)
	if err != nil {
		return nil, err
	}

	responsible, err := s.store.IsUserResponsibleForOrganization(ctx, user.ID, t.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("check responsible: %w", err)
	}
	if !responsible {
		author, err := s.store.HasAuthorBidOnTender(ctx, t.ID, user.ID)
		if err != nil {
			return nil, fmt.Errorf("check bid author: %w", err)
		}
		if !author {
			return nil, fmt.Errorf("%w: user %s has no access to bids of tender %s", ErrUnauthorized, user.ID, t.ID)
		}
	}

	bids, err := s.store.ListTenderBids(ctx, t.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list tender bids: %w", err)
	}
	return bids, nil
}

func (s *Service) BidStatus(ctx context.Context, bidID uuid.UUID, username string) (models.BidStatus, error) {
	b, err := s.authorizedBid(ctx, s.store, bidID, username, false)
	if err != nil {
		return "", err
	}
	return b.Status, nil
}

// UpdateBidStatus меняет только статус, без новой версии.
func (s *Service) UpdateBidStatus(ctx context.Context, bidID uuid.UUID, status models.BidStatus, username string) (*models.Bid, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: bid status %q", ErrInvalidInput, status)
	}

	var bid *models.Bid
	err := s.store.WithinTx(ctx, func(tx models.Repository) error {
		b, err := s.authorizedBid(ctx, tx, bidID, username, true)
		if err != nil {
			return err
		}
		b.Status = status
		if err := tx.UpdateBid(ctx, b); err != nil {
			return fmt.Errorf("update bid status: %w", err)
		}
		bid = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bid status changed",
		zap.Stringer("bid_id", bid.ID),
		zap.String("status", string(bid.Status)))
	return bid, nil
}

func (s *Service) EditBid(ctx context.Context, bidID uuid.UUID, username string, patch BidPatch) (*models.Bid, error) {
	var bid *models.Bid
	err := s.store.WithinTx(ctx, func(tx models.Repository) error {
		b, err := s.authorizedBid(ctx, tx, bidID, username, true)
		if err != nil {
			return err
		}
		if err := bidHistory(tx, b.ID).edit(ctx, b, patch.apply); err != nil {
			return err
		}
		bid = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bid edited",
		zap.Stringer("bid_id", bid.ID),
		zap.Int("version", bid.Version))
	return bid, nil
}

func (s *Service) RollbackBid(ctx context.Context, bidID uuid.UUID, version int, username string) (*models.Bid, error) {
	if version < 1 {
		return nil, fmt.Errorf("%w: version must be positive", ErrInvalidInput)
	}

	var bid *models.Bid
	err := s.store.WithinTx(ctx, func(tx models.Repository) error {
		b, err := s.authorizedBid(ctx, tx, bidID, username, true)
		if err != nil {
			return err
		}
		if err := bidHistory(tx, b.ID).rollback(ctx, b, version); err != nil {
			return err
		}
		bid = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rec.RolledBack("bid")
	s.log.Info("bid rolled back",
		zap.Stringer("bid_id", bid.ID),
		zap.Int("from", version),
		zap.Int("version", bid.Version))
	return bid, nil
}

func (s *Service) authorizedBid(ctx context.Context, repo models.Repository, bidID uuid.UUID, username string, forUpdate bool) (*models.Bid, error) {
	b, err := loadBid(ctx, repo, bidID, forUpdate)
	if err != nil {
		return nil, err
	}
	user, err := resolveEmployee(ctx, repo, username)
	if err != nil {
		return nil, err
	}
	if err := authorizeBidActor(ctx, repo, user, b); err != nil {
		return nil, err
	}
	return b, nil
}
