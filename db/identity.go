package db

import (
	"context"

	"tender-marketplace/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const employeeColumns = `id, username, first_name, last_name, created_at, updated_at`

func (s *Queries) GetEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	e := &models.Employee{}
	query := `SELECT ` + employeeColumns + ` FROM employee WHERE id=$1`
	if err := sqlx.GetContext(ctx, s.q, e, query, id); err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (s *Queries) GetEmployeeByUsername(ctx context.Context, username string) (*models.Employee, error) {
	e := &models.Employee{}
	query := `SELECT ` + employeeColumns + ` FROM employee WHERE username=$1`
	if err := sqlx.GetContext(ctx, s.q, e, query, username); err != nil {
		return nil, notFound(err)
	}
	return e, nil
}

func (s *Queries) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	employees := []models.Employee{}
	query := `SELECT ` + employeeColumns + ` FROM employee ORDER BY username`
	err := sqlx.SelectContext(ctx, s.q, &employees, query)
	return employees, err
}

const organizationColumns = `id, name, description, type, created_at, updated_at`

func (s *Queries) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	o := &models.Organization{}
	query := `SELECT ` + organizationColumns + ` FROM organization WHERE id=$1`
	if err := sqlx.GetContext(ctx, s.q, o, query, id); err != nil {
		return nil, notFound(err)
	}
	return o, nil
}

func (s *Queries) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	orgs := []models.Organization{}
	query := `SELECT ` + organizationColumns + ` FROM organization ORDER BY name`
	err := sqlx.SelectContext(ctx, s.q, &orgs, query)
	return orgs, err
}

func (s *Queries) ListResponsibles(ctx context.Context) ([]models.OrganizationResponsible, error) {
	rows := []models.OrganizationResponsible{}
	query := `SELECT id, organization_id, user_id FROM organization_responsible`
	err := sqlx.SelectContext(ctx, s.q, &rows, query)
	return rows, err
}

func (s *Queries) IsUserResponsibleForOrganization(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	var count int
	query := `SELECT COUNT(1) FROM organization_responsible WHERE user_id=$1 AND organization_id=$2`
	if err := sqlx.GetContext(ctx, s.q, &count, query, userID, orgID); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Queries) CountResponsibles(ctx context.Context, organizationID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(1) FROM organization_responsible WHERE organization_id = $1`
	err := sqlx.GetContext(ctx, s.q, &count, query, organizationID)
	return count, err
}
