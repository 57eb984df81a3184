package service

import (
	"context"
	"errors"
	"fmt"

	"tender-marketplace/models"

	"github.com/google/uuid"
)

// history связывает живую сущность E с журналом её снимков S.
// Инвариант: после каждого commit снимок с номером версии равен состоянию сущности.
type history[E, S any] struct {
	entity   string
	update   func(context.Context, *E) error
	append   func(context.Context, S) error
	lookup   func(ctx context.Context, version int) (*S, error)
	snapshot func(*E) S
	restore  func(*E, S)
	version  func(*E) *int
}

func tenderHistory(repo models.Repository, id uuid.UUID) history[models.Tender, models.TenderVersion] {
	return history[models.Tender, models.TenderVersion]{
		entity: "tender",
		update: repo.UpdateTender,
		append: repo.SaveTenderVersion,
		lookup: func(ctx context.Context, version int) (*models.TenderVersion, error) {
			return repo.GetTenderVersion(ctx, id, version)
		},
		snapshot: (*models.Tender).Snapshot,
		restore:  (*models.Tender).Restore,
		version:  func(t *models.Tender) *int { return &t.Version },
	}
}

func bidHistory(repo models.Repository, id uuid.UUID) history[models.Bid, models.BidVersion] {
	return history[models.Bid, models.BidVersion]{
		entity: "bid",
		update: repo.UpdateBid,
		append: repo.SaveBidVersion,
		lookup: func(ctx context.Context, version int) (*models.BidVersion, error) {
			return repo.GetBidVersion(ctx, id, version)
		},
		snapshot: (*models.Bid).Snapshot,
		restore:  (*models.Bid).Restore,
		version:  func(b *models.Bid) *int { return &b.Version },
	}
}

// record пишет снимок текущего состояния без изменения версии (для только что созданной сущности).
func (h history[E, S]) record(ctx context.Context, e *E) error {
	if err := h.append(ctx, h.snapshot(e)); err != nil {
		return fmt.Errorf("save %s version: %w", h.entity, err)
	}
	return nil
}

// edit применяет частичное изменение и фиксирует новую версию.
func (h history[E, S]) edit(ctx context.Context, e *E, apply func(*E)) error {
	apply(e)
	return h.commit(ctx, e)
}

// rollback копирует поля снимка target в сущность и фиксирует их как новую версию.
// Журнал не усекается.
func (h history[E, S]) rollback(ctx context.Context, e *E, target int) error {
	snap, err := h.lookup(ctx, target)
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("%w: %s version %d", ErrNotFound, h.entity, target)
	}
	if err != nil {
		return fmt.Errorf("get %s version: %w", h.entity, err)
	}
	h.restore(e, *snap)
	return h.commit(ctx, e)
}

func (h history[E, S]) commit(ctx context.Context, e *E) error {
	*h.version(e)++
	if err := h.update(ctx, e); err != nil {
		return fmt.Errorf("update %s: %w", h.entity, err)
	}
	return h.record(ctx, e)
}
