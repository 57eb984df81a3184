package service

import (
	"testing"

	"tender-marketplace/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTender(t *testing.T) {
	f := newFixture(t)

	tender := f.createTender(t, "Bridge")
	assert.Equal(t, models.TenderCreated, tender.Status)
	assert.Equal(t, 1, tender.Version)
	assert.Equal(t, f.acme.ID, tender.OrganizationID)

	versions := f.store.tenderVersions(tender.ID)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, "Bridge", versions[0].Name)
	assert.Equal(t, models.TenderCreated, versions[0].Status)

	mine, err := f.svc.ListUserTenders(f.ctx, f.alice.Username, Page{Limit: 5})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, tender.ID, mine[0].ID)
}

func TestCreateTenderErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   CreateTenderInput
		want error
	}{
		{
			name: "unknown user",
			in:   CreateTenderInput{Name: "x", ServiceType: models.ServiceDelivery, OrganizationID: f.acme.ID, CreatorUsername: "ghost"},
			want: ErrUnauthenticated,
		},
		{
			name: "not responsible",
			in:   CreateTenderInput{Name: "x", ServiceType: models.ServiceDelivery, OrganizationID: f.acme.ID, CreatorUsername: f.dave.Username},
			want: ErrUnauthorized,
		},
		{
			name: "bad service type",
			in:   CreateTenderInput{Name: "x", ServiceType: "Magic", OrganizationID: f.acme.ID, CreatorUsername: f.alice.Username},
			want: ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateTender(f.ctx, tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, f.store.d.tenders)
	assert.Empty(t, f.store.d.tenderVersions)
}

func TestListTenders(t *testing.T) {
	f := newFixture(t)
	f.createTender(t, "B")
	f.createTender(t, "A")
	_, err := f.svc.CreateTender(f.ctx, CreateTenderInput{
		Name: "C", ServiceType: models.ServiceDelivery, OrganizationID: f.acme.ID, CreatorUsername: f.bob.Username,
	})
	require.NoError(t, err)

	all, err := f.svc.ListTenders(f.ctx, nil, Page{Limit: 5})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{all[0].Name, all[1].Name, all[2].Name})

	delivery, err := f.svc.ListTenders(f.ctx, []models.ServiceType{models.ServiceDelivery}, Page{Limit: 5})
	require.NoError(t, err)
	require.Len(t, delivery, 1)
	assert.Equal(t, "C", delivery[0].Name)

	second, err := f.svc.ListTenders(f.ctx, nil, Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "B", second[0].Name)

	_, err = f.svc.ListTenders(f.ctx, []models.ServiceType{"Magic"}, Page{Limit: 5})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.ListUserTenders(f.ctx, "ghost", Page{Limit: 5})
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestTenderStatus(t *testing.T) {
	f := newFixture(t)
	tender := f.createTender(t, "Bridge")

	status, err := f.svc.TenderStatus(f.ctx, tender.ID, f.bob.Username)
	require.NoError(t, err)
	assert.Equal(t, models.TenderCreated, status)

	_, err = f.svc.TenderStatus(f.ctx, tender.ID, f.dave.Username)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.TenderStatus(f.ctx, tender.ID, "ghost")
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = f.svc.TenderStatus(f.ctx, uuid.New(), f.bob.Username)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTenderStatusKeepsVersion(t *testing.T) {
	f := newFixture(t)
	tender := f.createTender(t, "Bridge")

	updated, err := f.svc.UpdateTenderStatus(f.ctx, tender.ID, models.TenderPublished, f.alice.Username)
	require.NoError(t, err)
	assert.Equal(t, models.TenderPublished, updated.Status)
	assert.Equal(t, 1, updated.Version)
	assert.Len(t, f.store.tenderVersions(tender.ID), 1)
}

func TestUpdateTenderStatusPolicy(t *testing.T) {
	f := newFixture(t)
	tender := f.createTender(t, "Bridge")

	// Created: нужен ответственный.
	_, err := f.svc.UpdateTenderStatus(f.ctx, tender.ID, models.TenderPublished, f.dave.Username)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, models.TenderCreated, f.tender(t, tender).Status)

	_, err = f.svc.UpdateTenderStatus(f.ctx, tender.ID, models.TenderPublished, f.alice.Username)
	require.NoError(t, err)

	// Published: достаточно существующего пользователя.
	_, err = f.svc.UpdateTenderStatus(f.ctx, tender.ID, models.TenderClosed, "ghost")
	require.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.svc.UpdateTenderStatus(f.ctx, tender.ID, models.TenderClosed, f.dave.Username)
	require.NoError(t, err)

	// Closed: снова нужен ответственный.
	_, err = f.svc.UpdateTenderStatus(f.ctx, tender.ID, models.TenderPublished, f.dave.Username)
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, models.TenderClosed, f.tender(t, tender).Status)

	_, err = f.svc.UpdateTenderStatus(f.ctx, tender.ID, "Archived", f.alice.Username)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.UpdateTenderStatus(f.ctx, uuid.New(), models.TenderClosed, f.alice.Username)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestEditTenderPartialUpdate(t *testing.T) {
	f := newFixture(t)
	tender := f.createTender(t, "Bridge")

	edited, err := f.svc.EditTender(f.ctx, tender.ID, f.bob.Username, TenderPatch{Name: ptr("Tunnel")})
	require.NoError(t, err)
	assert.Equal(t, 2, edited.Version)
	assert.Equal(t, "Tunnel", edited.Name)
	assert.Equal(t, tender.Description, edited.Description)
	assert.Equal(t, tender.ServiceType, edited.ServiceType)
	assert.Equal(t, tender.Status, edited.Status)

	edited, err = f.svc.EditTender(f.ctx, tender.ID, f.bob.Username, TenderPatch{ServiceType: ptr(models.ServiceManufacture)})
	require.NoError(t, err)
	assert.Equal(t, 3, edited.Version)
	assert.Equal(t, "Tunnel", edited.Name)

	versions := f.store.tenderVersions(tender.ID)
	require.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, i+1, v.Version)
	}
	assert.Equal(t, edited.Snapshot().Name, versions[2].Name)
	assert.Equal(t, models.ServiceManufacture, versions[2].ServiceType)
}

func TestEditTenderRejected(t *testing.T) {
	f := newFixture(t)
	tender := f.createTender(t, "Bridge")

	_, err := f.svc.EditTender(f.ctx, tender.ID, f.dave.Username, TenderPatch{Name: ptr("Hijack")})
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.EditTender(f.ctx, tender.ID, f.bob.Username, TenderPatch{ServiceType: ptr(models.ServiceType("Magic"))})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.EditTender(f.ctx, uuid.New(), f.bob.Username, TenderPatch{Name: ptr("x")})
	require.ErrorIs(t, err, ErrNotFound)

	got := f.tender(t, tender)
	assert.Equal(t, "Bridge", got.Name)
	assert.Equal(t, 1, got.Version)
	assert.Len(t, f.store.tenderVersions(tender.ID), 1)
}

func TestRollbackTender(t *testing.T) {
	f := newFixture(t)
	tender := f.createTender(t, "Bridge")

	_, err := f.svc.EditTender(f.ctx, tender.ID, f.alice.Username, TenderPatch{Name: ptr("Tunnel")})
	require.NoError(t, err)
	_, err = f.svc.EditTender(f.ctx, tender.ID, f.alice.Username, TenderPatch{Description: ptr("deeper")})
	require.NoError(t, err)

	rolled, err := f.svc.RollbackTender(f.ctx, tender.ID, 1, f.carol.Username)
	require.NoError(t, err)
	assert.Equal(t, 4, rolled.Version)
	assert.Equal(t, "Bridge", rolled.Name)
	assert.Equal(t, tender.Description, rolled.Description)
	assert.Equal(t, 1, f.rec.rollbacks["tender"])

	// История не усекается.
	versions := f.store.tenderVersions(tender.ID)
	require.Len(t, versions, 4)
	assert.Equal(t, "Tunnel", versions[1].Name)
	assert.Equal(t, "Bridge", versions[3].Name)

	// Откат на промежуточную версию тоже даёт новую версию.
	rolled, err = f.svc.RollbackTender(f.ctx, tender.ID, 2, f.carol.Username)
	require.NoError(t, err)
	assert.Equal(t, 5, rolled.Version)
	assert.Equal(t, "Tunnel", rolled.Name)
	assert.Equal(t, tender.Description, rolled.Description)
}

func TestRollbackTenderErrors(t *testing.T) {
	f := newFixture(t)
	tender := f.createTender(t, "Bridge")

	_, err := f.svc.RollbackTender(f.ctx, tender.ID, 7, f.alice.Username)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.RollbackTender(f.ctx, tender.ID, 0, f.alice.Username)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.RollbackTender(f.ctx, tender.ID, 1, f.erin.Username)
	require.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, 1, f.tender(t, tender).Version)
	assert.Len(t, f.store.tenderVersions(tender.ID), 1)
	assert.Zero(t, f.rec.rollbacks["tender"])
}

func TestEditTenderIsAtomic(t *testing.T) {
	f := newFixture(t)
	tender := f.createTender(t, "Bridge")

	f.store.failOn["SaveTenderVersion"] = true
	_, err := f.svc.EditTender(f.ctx, tender.ID, f.alice.Username, TenderPatch{Name: ptr("Tunnel")})
	require.ErrorIs(t, err, errInjected)

	got := f.tender(t, tender)
	assert.Equal(t, "Bridge", got.Name)
	assert.Equal(t, 1, got.Version)
	assert.Len(t, f.store.tenderVersions(tender.ID), 1)
}

// После любой последовательности правок и откатов версии растут ровно на 1,
// а снимок текущей версии совпадает с живой записью.
func TestTenderVersionHistoryInvariants(t *testing.T) {
	f := newFixture(t)
	tender := f.createTender(t, "v1")

	steps := []func() (*models.Tender, error){
		func() (*models.Tender, error) {
			return f.svc.EditTender(f.ctx, tender.ID, f.alice.Username, TenderPatch{Name: ptr("v2")})
		},
		func() (*models.Tender, error) {
			return f.svc.EditTender(f.ctx, tender.ID, f.bob.Username, TenderPatch{Description: ptr("d3")})
		},
		func() (*models.Tender, error) {
			return f.svc.RollbackTender(f.ctx, tender.ID, 1, f.carol.Username)
		},
		func() (*models.Tender, error) {
			return f.svc.UpdateTenderStatus(f.ctx, tender.ID, models.TenderPublished, f.alice.Username)
		},
		func() (*models.Tender, error) {
			return f.svc.EditTender(f.ctx, tender.ID, f.alice.Username, TenderPatch{ServiceType: ptr(models.ServiceDelivery)})
		},
		func() (*models.Tender, error) {
			return f.svc.RollbackTender(f.ctx, tender.ID, 3, f.alice.Username)
		},
	}

	prev := tender.Version
	for i, step := range steps {
		got, err := step()
		require.NoError(t, err, "step %d", i)
		require.GreaterOrEqual(t, got.Version, prev)
		require.LessOrEqual(t, got.Version-prev, 1)
		prev = got.Version
	}

	live := f.tender(t, tender)
	versions := f.store.tenderVersions(tender.ID)
	require.Len(t, versions, live.Version)
	for i, v := range versions {
		require.Equal(t, i+1, v.Version)
	}
	last := versions[len(versions)-1]
	assert.Equal(t, live.Name, last.Name)
	assert.Equal(t, live.Description, last.Description)
	assert.Equal(t, live.ServiceType, last.ServiceType)
}
