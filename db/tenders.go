package db

import (
	"context"

	"tender-marketplace/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const tenderColumns = `id, name, description, service_type, status, organization_id, version, created_at`

func (s *Queries) CreateTender(ctx context.Context, t *models.Tender) error {
	query := `
        INSERT INTO tender
            (id, name, description, service_type, status, organization_id, version)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at`
	return s.q.QueryRowxContext(ctx, query,
		t.ID, t.Name, t.Description, t.ServiceType, t.Status, t.OrganizationID, t.Version).
		Scan(&t.CreatedAt)
}

func (s *Queries) GetTender(ctx context.Context, id uuid.UUID) (*models.Tender, error) {
	return s.getTender(ctx, `SELECT `+tenderColumns+` FROM tender WHERE id=$1`, id)
}

func (s *Queries) GetTenderForUpdate(ctx context.Context, id uuid.UUID) (*models.Tender, error) {
	return s.getTender(ctx, `SELECT `+tenderColumns+` FROM tender WHERE id=$1 FOR UPDATE`, id)
}

func (s *Queries) getTender(ctx context.Context, query string, id uuid.UUID) (*models.Tender, error) {
	t := &models.Tender{}
	if err := sqlx.GetContext(ctx, s.q, t, query, id); err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// UpdateTender сохраняет поля тендера как есть; версию выставляет вызывающий.
func (s *Queries) UpdateTender(ctx context.Context, t *models.Tender) error {
	query := `
        UPDATE tender
        SET name=$1, description=$2, service_type=$3, status=$4, version=$5
        WHERE id=$6`
	res, err := s.q.ExecContext(ctx, query,
		t.Name, t.Description, t.ServiceType, t.Status, t.Version, t.ID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (s *Queries) ListTenders(ctx context.Context, serviceTypes []models.ServiceType, limit, offset int) ([]models.Tender, error) {
	tenders := []models.Tender{}
	if len(serviceTypes) == 0 {
		query := `SELECT ` + tenderColumns + ` FROM tender ORDER BY name ASC LIMIT $1 OFFSET $2`
		err := sqlx.SelectContext(ctx, s.q, &tenders, query, limit, offset)
		return tenders, err
	}

	types := make([]string, len(serviceTypes))
	for i, st := range serviceTypes {
		types[i] = string(st)
	}
	query := `
        SELECT ` + tenderColumns + ` FROM tender
        WHERE service_type = ANY($1)
        ORDER BY name ASC
        LIMIT $2 OFFSET $3`
	err := sqlx.SelectContext(ctx, s.q, &tenders, query, pq.Array(types), limit, offset)
	return tenders, err
}

func (s *Queries) ListUserTenders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Tender, error) {
	query := `
        SELECT t.id, t.name, t.description, t.service_type, t.status, t.organization_id, t.version, t.created_at
        FROM tender t
        JOIN tender_user tu ON tu.tender_id = t.id
        WHERE tu.user_id = $1
        ORDER BY t.name ASC
        LIMIT $2 OFFSET $3
    `
	tenders := []models.Tender{}
	err := sqlx.SelectContext(ctx, s.q, &tenders, query, userID, limit, offset)
	return tenders, err
}

func (s *Queries) AddTenderUser(ctx context.Context, tu models.TenderUser) error {
	query := `INSERT INTO tender_user (id, tender_id, user_id) VALUES ($1, $2, $3)`
	_, err := s.q.ExecContext(ctx, query, tu.ID, tu.TenderID, tu.UserID)
	return err
}

func (s *Queries) SaveTenderVersion(ctx context.Context, v models.TenderVersion) error {
	query := `
        INSERT INTO tender_version
            (tender_id, name, description, service_type, status, version)
        VALUES
            ($1, $2, $3, $4, $5, $6)
    `
	_, err := s.q.ExecContext(ctx, query,
		v.TenderID, v.Name, v.Description, v.ServiceType, v.Status, v.Version)
	return err
}

func (s *Queries) GetTenderVersion(ctx context.Context, tenderID uuid.UUID, version int) (*models.TenderVersion, error) {
	var v models.TenderVersion
	query := `
        SELECT tender_id, name, description, service_type, status, version, created_at
        FROM tender_version
        WHERE tender_id = $1 AND version = $2
    `
	if err := sqlx.GetContext(ctx, s.q, &v, query, tenderID, version); err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}
