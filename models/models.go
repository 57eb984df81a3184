package models

import (
	"time"

	"github.com/google/uuid"
)

// Тип организации
type OrganizationType string

const (
	OrganizationIE  OrganizationType = "IE"
	OrganizationLLC OrganizationType = "LLC"
	OrganizationJSC OrganizationType = "JSC"
)

// Вид услуги тендера
type ServiceType string

const (
	ServiceConstruction ServiceType = "Construction"
	ServiceDelivery     ServiceType = "Delivery"
	ServiceManufacture  ServiceType = "Manufacture"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceConstruction, ServiceDelivery, ServiceManufacture:
		return true
	}
	return false
}

// Статус тендера: Created -> Published -> Closed
type TenderStatus string

const (
	TenderCreated   TenderStatus = "Created"
	TenderPublished TenderStatus = "Published"
	TenderClosed    TenderStatus = "Closed"
)

func (s TenderStatus) Valid() bool {
	switch s {
	case TenderCreated, TenderPublished, TenderClosed:
		return true
	}
	return false
}

// Статус предложения: Created -> Published -> Canceled
type BidStatus string

const (
	BidCreated   BidStatus = "Created"
	BidPublished BidStatus = "Published"
	BidCanceled  BidStatus = "Canceled"
)

func (s BidStatus) Valid() bool {
	switch s {
	case BidCreated, BidPublished, BidCanceled:
		return true
	}
	return false
}

// Автор предложения
type AuthorType string

const (
	AuthorOrganization AuthorType = "Organization"
	AuthorUser         AuthorType = "User"
)

func (a AuthorType) Valid() bool {
	return a == AuthorOrganization || a == AuthorUser
}

// Решение по предложению
type Decision string

const (
	DecisionApproved Decision = "Approved"
	DecisionRejected Decision = "Rejected"
)

func (d Decision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// Сущность Пользователя
type Employee struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	FirstName *string   `db:"first_name" json:"firstName,omitempty"` // может быть NULL
	LastName  *string   `db:"last_name" json:"lastName,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// Сущность Организации
type Organization struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Description string           `db:"description" json:"description"`
	Type        OrganizationType `db:"type" json:"type"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"-"`
}

// Связь организация - ответственный пользователь
type OrganizationResponsible struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organizationId"`
	UserID         uuid.UUID `db:"user_id" json:"userId"`
}

// Сущность Тендера
type Tender struct {
	ID             uuid.UUID    `db:"id" json:"id"`
	Name           string       `db:"name" json:"name"`
	Description    string       `db:"description" json:"description"`
	ServiceType    ServiceType  `db:"service_type" json:"serviceType"`
	Status         TenderStatus `db:"status" json:"status"`
	OrganizationID uuid.UUID    `db:"organization_id" json:"organizationId"`
	Version        int          `db:"version" json:"version"`
	CreatedAt      time.Time    `db:"created_at" json:"createdAt"`
}

// Снимок редактируемых полей тендера
type TenderVersion struct {
	TenderID    uuid.UUID    `db:"tender_id" json:"tenderId"`
	Name        string       `db:"name" json:"name"`
	Description string       `db:"description" json:"description"`
	ServiceType ServiceType  `db:"service_type" json:"serviceType"`
	Status      TenderStatus `db:"status" json:"status"`
	Version     int          `db:"version" json:"version"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
}

// Snapshot возвращает снимок текущего состояния тендера.
func (t *Tender) Snapshot() TenderVersion {
	return TenderVersion{
		TenderID:    t.ID,
		Name:        t.Name,
		Description: t.Description,
		ServiceType: t.ServiceType,
		Status:      t.Status,
		Version:     t.Version,
	}
}

// Restore копирует поля снимка в тендер. Версия не трогается.
func (t *Tender) Restore(v TenderVersion) {
	t.Name = v.Name
	t.Description = v.Description
	t.ServiceType = v.ServiceType
	t.Status = v.Status
}

// Кто создал тендер (для "мои тендеры")
type TenderUser struct {
	ID       uuid.UUID `db:"id" json:"id"`
	TenderID uuid.UUID `db:"tender_id" json:"tenderId"`
	UserID   uuid.UUID `db:"user_id" json:"userId"`
}

// Сущность Предложения
type Bid struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Status      BidStatus  `db:"status" json:"status"`
	TenderID    uuid.UUID  `db:"tender_id" json:"tenderId"`
	AuthorType  AuthorType `db:"author_type" json:"authorType"`
	AuthorID    uuid.UUID  `db:"author_id" json:"authorId"`
	Version     int        `db:"version" json:"version"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// Снимок редактируемых полей предложения
type BidVersion struct {
	BidID       uuid.UUID `db:"bid_id" json:"bidId"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Status      BidStatus `db:"status" json:"status"`
	Version     int       `db:"version" json:"version"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

func (b *Bid) Snapshot() BidVersion {
	return BidVersion{
		BidID:       b.ID,
		Name:        b.Name,
		Description: b.Description,
		Status:      b.Status,
		Version:     b.Version,
	}
}

func (b *Bid) Restore(v BidVersion) {
	b.Name = v.Name
	b.Description = v.Description
	b.Status = v.Status
}

// Решение ответственного по предложению. Журнал только дописывается.
type BidDecision struct {
	ID        uuid.UUID `db:"id" json:"id"`
	BidID     uuid.UUID `db:"bid_id" json:"bidId"`
	Decision  Decision  `db:"decision" json:"decision"`
	Username  string    `db:"username" json:"username"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Сущность Отзыва, привязан к автору предложения
type BidReview struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BidAuthorID uuid.UUID `db:"bid_author_id" json:"-"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
