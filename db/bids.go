package db

import (
	"context"

	"tender-marketplace/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const bidColumns = `id, name, description, status, tender_id, author_type, author_id, version, created_at`

func (s *Queries) CreateBid(ctx context.Context, b *models.Bid) error {
	query := `
        INSERT INTO bid
            (id, name, description, status, tender_id, author_type, author_id, version)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING created_at`
	return s.q.QueryRowxContext(ctx, query,
		b.ID, b.Name, b.Description, b.Status, b.TenderID, b.AuthorType, b.AuthorID, b.Version).
		Scan(&b.CreatedAt)
}

func (s *Queries) GetBid(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	return s.getBid(ctx, `SELECT `+bidColumns+` FROM bid WHERE id=$1`, id)
}

func (s *Queries) GetBidForUpdate(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	return s.getBid(ctx, `SELECT `+bidColumns+` FROM bid WHERE id=$1 FOR UPDATE`, id)
}

func (s *Queries) getBid(ctx context.Context, query string, id uuid.UUID) (*models.Bid, error) {
	b := &models.Bid{}
	if err := sqlx.GetContext(ctx, s.q, b, query, id); err != nil {
		return nil, notFound(err)
	}
	return b, nil
}

func (s *Queries) UpdateBid(ctx context.Context, b *models.Bid) error {
	query := `
        UPDATE bid
        SET name=$1, description=$2, status=$3, version=$4
        WHERE id=$5`
	res, err := s.q.ExecContext(ctx, query, b.Name, b.Description, b.Status, b.Version, b.ID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (s *Queries) ListAuthorBids(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]models.Bid, error) {
	query := `
        SELECT ` + bidColumns + ` FROM bid
        WHERE author_id = $1
        ORDER BY name ASC
        LIMIT $2 OFFSET $3`
	bids := []models.Bid{}
	err := sqlx.SelectContext(ctx, s.q, &bids, query, authorID, limit, offset)
	return bids, err
}

func (s *Queries) ListTenderBids(ctx context.Context, tenderID uuid.UUID, limit, offset int) ([]models.Bid, error) {
	query := `
        SELECT ` + bidColumns + ` FROM bid
        WHERE tender_id = $1
        ORDER BY name ASC
        LIMIT $2 OFFSET $3`
	bids := []models.Bid{}
	err := sqlx.SelectContext(ctx, s.q, &bids, query, tenderID, limit, offset)
	return bids, err
}

func (s *Queries) HasAuthorBidOnTender(ctx context.Context, tenderID, authorID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM bid WHERE tender_id = $1 AND author_id = $2)`
	err := sqlx.GetContext(ctx, s.q, &exists, query, tenderID, authorID)
	return exists, err
}

func (s *Queries) SaveBidVersion(ctx context.Context, v models.BidVersion) error {
	query := `
        INSERT INTO bid_version
            (bid_id, name, description, status, version)
        VALUES
            ($1, $2, $3, $4, $5)
    `
	_, err := s.q.ExecContext(ctx, query, v.BidID, v.Name, v.Description, v.Status, v.Version)
	return err
}

func (s *Queries) GetBidVersion(ctx context.Context, bidID uuid.UUID, version int) (*models.BidVersion, error) {
	var v models.BidVersion
	query := `
        SELECT bid_id, name, description, status, version, created_at
        FROM bid_version
        WHERE bid_id = $1 AND version = $2
    `
	if err := sqlx.GetContext(ctx, s.q, &v, query, bidID, version); err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

func (s *Queries) AddBidDecision(ctx context.Context, d *models.BidDecision) error {
	query := `
        INSERT INTO bid_decision (id, bid_id, decision, username)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at`
	return s.q.QueryRowxContext(ctx, query, d.ID, d.BidID, d.Decision, d.Username).Scan(&d.CreatedAt)
}

func (s *Queries) CountBidDecisions(ctx context.Context, bidID uuid.UUID, only ...models.Decision) (int, error) {
	var count int
	if len(only) == 0 {
		query := `SELECT COUNT(1) FROM bid_decision WHERE bid_id = $1`
		err := sqlx.GetContext(ctx, s.q, &count, query, bidID)
		return count, err
	}

	decisions := make([]string, len(only))
	for i, d := range only {
		decisions[i] = string(d)
	}
	query := `SELECT COUNT(1) FROM bid_decision WHERE bid_id = $1 AND decision = ANY($2)`
	err := sqlx.GetContext(ctx, s.q, &count, query, bidID, pq.Array(decisions))
	return count, err
}

func (s *Queries) CreateBidReview(ctx context.Context, r *models.BidReview) error {
	query := `
        INSERT INTO bid_review (id, bid_author_id, description)
        VALUES ($1, $2, $3)
        RETURNING created_at`
	return s.q.QueryRowxContext(ctx, query, r.ID, r.BidAuthorID, r.Description).Scan(&r.CreatedAt)
}

func (s *Queries) ListAuthorReviews(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]models.BidReview, error) {
	query := `
        SELECT id, bid_author_id, description, created_at
        FROM bid_review
        WHERE bid_author_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `
	reviews := []models.BidReview{}
	err := sqlx.SelectContext(ctx, s.q, &reviews, query, authorID, limit, offset)
	return reviews, err
}
