package service

import (
	"context"
	"fmt"

	"tender-marketplace/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// requiredQuorum = min(потолок, число ответственных за организацию тендера).
func (s *Service) requiredQuorum(responsibles int) int {
	return min(s.quorumCap, responsibles)
}

func (s *Service) countedDecisions() []models.Decision {
	if s.counting == CountApprovedOnly {
		return []models.Decision{models.DecisionApproved}
	}
	return nil
}

// SubmitDecision записывает решение ответственного по предложению.
// Rejected отменяет предложение. Approved закрывает тендер, когда набран кворум.
func (s *Service) SubmitDecision(ctx context.Context, bidID uuid.UUID, decision models.Decision, username string) (*models.Bid, error) {
	if !decision.Valid() {
		return nil, fmt.Errorf("%w: decision %q", ErrInvalidInput, decision)
	}

	var (
		bid          *models.Bid
		tenderClosed bool
	)
	err := s.store.WithinTx(ctx, func(tx models.Repository) error {
		b, err := loadBid(ctx, tx, bidID, true)
		if err != nil {
			return err
		}
		if b.Status == models.BidCanceled {
			return fmt.Errorf("%w: bid %s is canceled", ErrInvalidState, b.ID)
		}
		user, err := resolveEmployee(ctx, tx, username)
		if err != nil {
			return err
		}
		t, err := loadTender(ctx, tx, b.TenderID, true)
		if err != nil {
			return err
		}
		if err := authorize(ctx, tx, user.ID, t.OrganizationID); err != nil {
			return err
		}

		d := &models.BidDecision{ID: uuid.New(), BidID: b.ID, Decision: decision, Username: user.Username}
		if err := tx.AddBidDecision(ctx, d); err != nil {
			return fmt.Errorf("add bid decision: %w", err)
		}

		if decision == models.DecisionRejected {
			b.Status = models.BidCanceled
			if err := tx.UpdateBid(ctx, b); err != nil {
				return fmt.Errorf("cancel bid: %w", err)
			}
			bid = b
			return nil
		}

		current, err := tx.CountBidDecisions(ctx, b.ID, s.countedDecisions()...)
		if err != nil {
			return fmt.Errorf("count decisions: %w", err)
		}
		responsibles, err := tx.CountResponsibles(ctx, t.OrganizationID)
		if err != nil {
			return fmt.Errorf("count responsibles: %w", err)
		}
		if current >= s.requiredQuorum(responsibles) && t.Status != models.TenderClosed {
			t.Status = models.TenderClosed
			if err := tx.UpdateTender(ctx, t); err != nil {
				return fmt.Errorf("close tender: %w", err)
			}
			tenderClosed = true
		}
		bid = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rec.DecisionRecorded(string(decision))
	if decision == models.DecisionRejected {
		s.rec.BidCanceled()
	}
	if tenderClosed {
		s.rec.TenderClosed()
	}
	s.log.Info("bid decision submitted",
		zap.Stringer("bid_id", bid.ID),
		zap.String("decision", string(decision)),
		zap.Bool("tender_closed", tenderClosed))
	return bid, nil
}

// SubmitReview оставляет отзыв об авторе предложения. Предложение не меняется.
func (s *Service) SubmitReview(ctx context.Context, bidID uuid.UUID, feedback, username string) (*models.Bid, error) {
	var bid *models.Bid
	err := s.store.WithinTx(ctx, func(tx models.Repository) error {
		b, err := loadBid(ctx, tx, bidID, false)
		if err != nil {
			return err
		}
		user, err := resolveEmployee(ctx, tx, username)
		if err != nil {
			return err
		}
		t, err := loadTender(ctx, tx, b.TenderID, false)
		if err != nil {
			return err
		}
		if err := authorize(ctx, tx, user.ID, t.OrganizationID); err != nil {
			return err
		}
		r := &models.BidReview{ID: uuid.New(), BidAuthorID: b.AuthorID, Description: feedback}
		if err := tx.CreateBidReview(ctx, r); err != nil {
			return fmt.Errorf("create review: %w", err)
		}
		bid = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("bid review submitted", zap.Stringer("bid_id", bid.ID))
	return bid, nil
}

// ListReviews возвращает отзывы об авторе предложений, новые первыми.
// Смотреть может ответственный за организацию тендера.
func (s *Service) ListReviews(ctx context.Context, tenderID uuid.UUID, authorUsername, requesterUsername string, page Page) ([]models.BidReview, error) {
	t, err := loadTender(ctx, s.store, tenderID, false)
	if err != nil {
		return nil, err
	}
	author, err := resolveEmployee(ctx, s.store, authorUsername)
	if err != nil {
		return nil, err
	}
	requester, err := resolveEmployee(ctx, s.store, requesterUsername)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, s.store, requester.ID, t.OrganizationID); err != nil {
		return nil, err
	}

	reviews, err := s.store.ListAuthorReviews(ctx, author.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
