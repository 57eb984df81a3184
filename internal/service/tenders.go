package service

import (
	"context"
	"fmt"

	"tender-marketplace/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateTenderInput struct {
	Name            string
	Description     string
	ServiceType     models.ServiceType
	OrganizationID  uuid.UUID
	CreatorUsername string
}

// TenderPatch - частичное изменение тендера: nil-поля не трогаются.
type TenderPatch struct {
	Name        *string
	Description *string
	ServiceType *models.ServiceType
}

func (p TenderPatch) apply(t *models.Tender) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ServiceType != nil {
		t.ServiceType = *p.ServiceType
	}
}

// CreateTender создаёт тендер в статусе Created с версией 1 и первым снимком.
func (s *Service) CreateTender(ctx context.Context, in CreateTenderInput) (*models.Tender, error) {
	if !in.ServiceType.Valid() {
		return nil, fmt.Errorf("%w: service type %q", ErrInvalidInput, in.ServiceType)
	}

	var tender *models.Tender
	err := s.store.WithinTx(ctx, func(tx models.Repository) error {
		user, err := resolveEmployee(ctx, tx, in.CreatorUsername)
		if err != nil {
			return err
		}
		if err := authorize(ctx, tx, user.ID, in.OrganizationID); err != nil {
			return err
		}

		t := &models.Tender{
			ID:             uuid.New(),
			Name:           in.Name,
			Description:    in.Description,
			ServiceType:    in.ServiceType,
			Status:         models.TenderCreated,
			OrganizationID: in.OrganizationID,
			Version:        1,
		}
		if err := tx.CreateTender(ctx, t); err != nil {
			return fmt.Errorf("create tender: %w", err)
		}
		if err := tenderHistory(tx, t.ID).record(ctx, t); err != nil {
			return err
		}
		link := models.TenderUser{ID: uuid.New(), TenderID: t.ID, UserID: user.ID}
		if err := tx.AddTenderUser(ctx, link); err != nil {
			return fmt.Errorf("link tender creator: %w", err)
		}
		tender = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tender created",
		zap.Stringer("tender_id", tender.ID),
		zap.Stringer("organization_id", tender.OrganizationID))
	return tender, nil
}

// ListTenders возвращает тендеры по имени; пустой serviceTypes - без фильтра.
func (s *Service) ListTenders(ctx context.Context, serviceTypes []models.ServiceType, page Page) ([]models.Tender, error) {
	for _, st := range serviceTypes {
		if !st.Valid() {
			return nil, fmt.Errorf("%w: service type %q", ErrInvalidInput, st)
		}
	}
	tenders, err := s.store.ListTenders(ctx, serviceTypes, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list tenders: %w", err)
	}
	return tenders, nil
}

// ListUserTenders возвращает тендеры, созданные пользователем.
func (s *Service) ListUserTenders(ctx context.Context, username string, page Page) ([]models.Tender, error) {
	user, err := resolveEmployee(ctx, s.store, username)
	if err != nil {
		return nil, err
	}
	tenders, err := s.store.ListUserTenders(ctx, user.ID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list user tenders: %w", err)
	}
	return tenders, nil
}

func (s *Service) TenderStatus(ctx context.Context, tenderID uuid.UUID, username string) (models.TenderStatus, error) {
	t, err := loadTender(ctx, s.store, tenderID, false)
	if err != nil {
		return "", err
	}
	user, err := resolveEmployee(ctx, s.store, username)
	if err != nil {
		return "", err
	}
	if err := authorize(ctx, s.store, user.ID, t.OrganizationID); err != nil {
		return "", err
	}
	return t.Status, nil
}

// UpdateTenderStatus меняет только статус: версия не растёт, снимок не пишется.
func (s *Service) UpdateTenderStatus(ctx context.Context, tenderID uuid.UUID, status models.TenderStatus, username string) (*models.Tender, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: tender status %q", ErrInvalidInput, status)
	}

	var tender *models.Tender
	err := s.store.WithinTx(ctx, func(tx models.Repository) error {
		t, err := loadTender(ctx, tx, tenderID, true)
		if err != nil {
			return err
		}
		user, err := resolveEmployee(ctx, tx, username)
		if err != nil {
			return err
		}
		if tenderStatusChangeNeedsAuthorization(t.Status) {
			if err := authorize(ctx, tx, user.ID, t.OrganizationID); err != nil {
				return err
			}
		}
		t.Status = status
		if err := tx.UpdateTender(ctx, t); err != nil {
			return fmt.Errorf("update tender status: %w", err)
		}
		tender = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tender status changed",
		zap.Stringer("tender_id", tender.ID),
		zap.String("status", string(tender.Status)))
	return tender, nil
}

// EditTender применяет патч и фиксирует новую версию.
func (s *Service) EditTender(ctx context.Context, tenderID uuid.UUID, username string, patch TenderPatch) (*models.Tender, error) {
	if patch.ServiceType != nil && !patch.ServiceType.Valid() {
		return nil, fmt.Errorf("%w: service type %q", ErrInvalidInput, *patch.ServiceType)
	}

	var tender *models.Tender
	err := s.store.WithinTx(ctx, func(tx models.Repository) error {
		t, err := s.authorizedTender(ctx, tx, tenderID, username)
		if err != nil {
			return err
		}
		if err := tenderHistory(tx, t.ID).edit(ctx, t, patch.apply); err != nil {
			return err
		}
		tender = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("tender edited",
		zap.Stringer("tender_id", tender.ID),
		zap.Int("version", tender.Version))
	return tender, nil
}

// RollbackTender восстанавливает поля из снимка version как новую версию.
func (s *Service) RollbackTender(ctx context.Context, tenderID uuid.UUID, version int, username string) (*models.Tender, error) {
	if version < 1 {
		return nil, fmt.Errorf("%w: version must be positive", ErrInvalidInput)
	}

	var tender *models.Tender
	err := s.store.WithinTx(ctx, func(tx models.Repository) error {
		t, err := s.authorizedTender(ctx, tx, tenderID, username)
		if err != nil {
			return err
		}
		if err := tenderHistory(tx, t.ID).rollback(ctx, t, version); err != nil {
			return err
		}
		tender = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rec.RolledBack("tender")
	s.log.Info("tender rolled back",
		zap.Stringer("tender_id", tender.ID),
		zap.Int("from", version),
		zap.Int("version", tender.Version))
	return tender, nil
}

// authorizedTender блокирует тендер и проверяет, что пользователь ответственный за его организацию.
func (s *Service) authorizedTender(ctx context.Context, tx models.Repository, tenderID uuid.UUID, username string) (*models.Tender, error) {
	t, err := loadTender(ctx, tx, tenderID, true)
	if err != nil {
		return nil, err
	}
	user, err := resolveEmployee(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, tx, user.ID, t.OrganizationID); err != nil {
		return nil, err
	}
	return t, nil
}
