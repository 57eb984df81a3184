package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"tender-marketplace/models"

	"github.com/google/uuid"
)

var errInjected = errors.New("injected failure")

// memData - состояние фейкового хранилища. clone даёт независимую копию для транзакции.
type memData struct {
	employees      map[uuid.UUID]models.Employee
	orgs           map[uuid.UUID]models.Organization
	responsibles   []models.OrganizationResponsible
	tenders        map[uuid.UUID]models.Tender
	tenderVersions []models.TenderVersion
	tenderUsers    []models.TenderUser
	bids           map[uuid.UUID]models.Bid
	bidVersions    []models.BidVersion
	decisions      []models.BidDecision
	reviews        []models.BidReview
}

func newMemData() *memData {
	return &memData{
		employees: map[uuid.UUID]models.Employee{},
		orgs:      map[uuid.UUID]models.Organization{},
		tenders:   map[uuid.UUID]models.Tender{},
		bids:      map[uuid.UUID]models.Bid{},
	}
}

func (d *memData) clone() *memData {
	return &memData{
		employees:      maps.Clone(d.employees),
		orgs:           maps.Clone(d.orgs),
		responsibles:   slices.Clone(d.responsibles),
		tenders:        maps.Clone(d.tenders),
		tenderVersions: slices.Clone(d.tenderVersions),
		tenderUsers:    slices.Clone(d.tenderUsers),
		bids:           maps.Clone(d.bids),
		bidVersions:    slices.Clone(d.bidVersions),
		decisions:      slices.Clone(d.decisions),
		reviews:        slices.Clone(d.reviews),
	}
}

// memRepo реализует models.Repository поверх memData.
type memRepo struct {
	d      *memData
	failOn map[string]bool
	clock  func() time.Time
}

func (r *memRepo) fail(method string) error {
	if r.failOn[method] {
		return errInjected
	}
	return nil
}

// memStore коммитит копию данных, только если fn вернула nil.
type memStore struct {
	*memRepo
	mu sync.Mutex
}

var _ models.Store = (*memStore)(nil)

func newMemStore() *memStore {
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &memStore{memRepo: &memRepo{
		d:      newMemData(),
		failOn: map[string]bool{},
		clock: func() time.Time {
			tick = tick.Add(time.Second)
			return tick
		},
	}}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx models.Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := &memRepo{d: m.d.clone(), failOn: m.failOn, clock: m.clock}
	if err := fn(work); err != nil {
		return err
	}
	m.d = work.d
	return nil
}

func (r *memRepo) GetEmployee(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	e, ok := r.d.employees[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &e, nil
}

func (r *memRepo) GetEmployeeByUsername(_ context.Context, username string) (*models.Employee, error) {
	for _, e := range r.d.employees {
		if e.Username == username {
			return &e, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memRepo) GetOrganization(_ context.Context, id uuid.UUID) (*models.Organization, error) {
	o, ok := r.d.orgs[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &o, nil
}

func (r *memRepo) ListEmployees(context.Context) ([]models.Employee, error) {
	out := slices.Collect(maps.Values(r.d.employees))
	slices.SortFunc(out, func(a, b models.Employee) int { return strings.Compare(a.Username, b.Username) })
	return out, nil
}

func (r *memRepo) ListOrganizations(context.Context) ([]models.Organization, error) {
	out := slices.Collect(maps.Values(r.d.orgs))
	slices.SortFunc(out, func(a, b models.Organization) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *memRepo) ListResponsibles(context.Context) ([]models.OrganizationResponsible, error) {
	return slices.Clone(r.d.responsibles), nil
}

func (r *memRepo) IsUserResponsibleForOrganization(_ context.Context, userID, orgID uuid.UUID) (bool, error) {
	return slices.ContainsFunc(r.d.responsibles, func(or models.OrganizationResponsible) bool {
		return or.UserID == userID && or.OrganizationID == orgID
	}), nil
}

func (r *memRepo) CountResponsibles(_ context.Context, orgID uuid.UUID) (int, error) {
	n := 0
	for _, or := range r.d.responsibles {
		if or.OrganizationID == orgID {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CreateTender(_ context.Context, t *models.Tender) error {
	if err := r.fail("CreateTender"); err != nil {
		return err
	}
	t.CreatedAt = r.clock()
	r.d.tenders[t.ID] = *t
	return nil
}

func (r *memRepo) GetTender(_ context.Context, id uuid.UUID) (*models.Tender, error) {
	t, ok := r.d.tenders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (r *memRepo) GetTenderForUpdate(ctx context.Context, id uuid.UUID) (*models.Tender, error) {
	return r.GetTender(ctx, id)
}

func (r *memRepo) UpdateTender(_ context.Context, t *models.Tender) error {
	if err := r.fail("UpdateTender"); err != nil {
		return err
	}
	if _, ok := r.d.tenders[t.ID]; !ok {
		return models.ErrNotFound
	}
	r.d.tenders[t.ID] = *t
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

func sortTenders(ts []models.Tender) {
	slices.SortFunc(ts, func(a, b models.Tender) int { return strings.Compare(a.Name, b.Name) })
}

func (r *memRepo) ListTenders(_ context.Context, serviceTypes []models.ServiceType, limit, offset int) ([]models.Tender, error) {
	out := []models.Tender{}
	for _, t := range r.d.tenders {
		if len(serviceTypes) == 0 || slices.Contains(serviceTypes, t.ServiceType) {
			out = append(out, t)
		}
	}
	sortTenders(out)
	return page(out, limit, offset), nil
}

func (r *memRepo) ListUserTenders(_ context.Context, userID uuid.UUID, limit, offset int) ([]models.Tender, error) {
	out := []models.Tender{}
	for _, tu := range r.d.tenderUsers {
		if tu.UserID == userID {
			out = append(out, r.d.tenders[tu.TenderID])
		}
	}
	sortTenders(out)
	return page(out, limit, offset), nil
}

func (r *memRepo) AddTenderUser(_ context.Context, tu models.TenderUser) error {
	r.d.tenderUsers = append(r.d.tenderUsers, tu)
	return nil
}

func (r *memRepo) SaveTenderVersion(_ context.Context, v models.TenderVersion) error {
	if err := r.fail("SaveTenderVersion"); err != nil {
		return err
	}
	for _, existing := range r.d.tenderVersions {
		if existing.TenderID == v.TenderID && existing.Version == v.Version {
			return errors.New("duplicate tender version")
		}
	}
	v.CreatedAt = r.clock()
	r.d.tenderVersions = append(r.d.tenderVersions, v)
	return nil
}

func (r *memRepo) GetTenderVersion(_ context.Context, tenderID uuid.UUID, version int) (*models.TenderVersion, error) {
	for _, v := range r.d.tenderVersions {
		if v.TenderID == tenderID && v.Version == version {
			return &v, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memRepo) CreateBid(_ context.Context, b *models.Bid) error {
	if err := r.fail("CreateBid"); err != nil {
		return err
	}
	b.CreatedAt = r.clock()
	r.d.bids[b.ID] = *b
	return nil
}

func (r *memRepo) GetBid(_ context.Context, id uuid.UUID) (*models.Bid, error) {
	b, ok := r.d.bids[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &b, nil
}

func (r *memRepo) GetBidForUpdate(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	return r.GetBid(ctx, id)
}

func (r *memRepo) UpdateBid(_ context.Context, b *models.Bid) error {
	if err := r.fail("UpdateBid"); err != nil {
		return err
	}
	if _, ok := r.d.bids[b.ID]; !ok {
		return models.ErrNotFound
	}
	r.d.bids[b.ID] = *b
	return nil
}

func (r *memRepo) listBids(keep func(models.Bid) bool, limit, offset int) []models.Bid {
	out := []models.Bid{}
	for _, b := range r.d.bids {
		if keep(b) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b models.Bid) int { return strings.Compare(a.Name, b.Name) })
	return page(out, limit, offset)
}

func (r *memRepo) ListAuthorBids(_ context.Context, authorID uuid.UUID, limit, offset int) ([]models.Bid, error) {
	return r.listBids(func(b models.Bid) bool { return b.AuthorID == authorID }, limit, offset), nil
}

func (r *memRepo) ListTenderBids(_ context.Context, tenderID uuid.UUID, limit, offset int) ([]models.Bid, error) {
	return r.listBids(func(b models.Bid) bool { return b.TenderID == tenderID }, limit, offset), nil
}

func (r *memRepo) HasAuthorBidOnTender(_ context.Context, tenderID, authorID uuid.UUID) (bool, error) {
	for _, b := range r.d.bids {
		if b.TenderID == tenderID && b.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) SaveBidVersion(_ context.Context, v models.BidVersion) error {
	if err := r.fail("SaveBidVersion"); err != nil {
		return err
	}
	for _, existing := range r.d.bidVersions {
		if existing.BidID == v.BidID && existing.Version == v.Version {
			return errors.New("duplicate bid version")
		}
	}
	v.CreatedAt = r.clock()
	r.d.bidVersions = append(r.d.bidVersions, v)
	return nil
}

func (r *memRepo) GetBidVersion(_ context.Context, bidID uuid.UUID, version int) (*models.BidVersion, error) {
	for _, v := range r.d.bidVersions {
		if v.BidID == bidID && v.Version == version {
			return &v, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *memRepo) AddBidDecision(_ context.Context, d *models.BidDecision) error {
	if err := r.fail("AddBidDecision"); err != nil {
		return err
	}
	d.CreatedAt = r.clock()
	r.d.decisions = append(r.d.decisions, *d)
	return nil
}

func (r *memRepo) CountBidDecisions(_ context.Context, bidID uuid.UUID, only ...models.Decision) (int, error) {
	n := 0
	for _, d := range r.d.decisions {
		if d.BidID == bidID && (len(only) == 0 || slices.Contains(only, d.Decision)) {
			n++
		}
	}
	return n, nil
}

func (r *memRepo) CreateBidReview(_ context.Context, rv *models.BidReview) error {
	rv.CreatedAt = r.clock()
	r.d.reviews = append(r.d.reviews, *rv)
	return nil
}

func (r *memRepo) ListAuthorReviews(_ context.Context, authorID uuid.UUID, limit, offset int) ([]models.BidReview, error) {
	out := []models.BidReview{}
	for _, rv := range r.d.reviews {
		if rv.BidAuthorID == authorID {
			out = append(out, rv)
		}
	}
	slices.SortFunc(out, func(a, b models.BidReview) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(out, limit, offset), nil
}

// Хелперы наполнения справочников.

func (m *memStore) addEmployee(username string) models.Employee {
	e := models.Employee{ID: uuid.New(), Username: username, FirstName: ptr(username), CreatedAt: m.clock()}
	m.d.employees[e.ID] = e
	return e
}

func (m *memStore) addOrganization(name string, responsibles ...models.Employee) models.Organization {
	o := models.Organization{ID: uuid.New(), Name: name, Type: models.OrganizationLLC, CreatedAt: m.clock()}
	m.d.orgs[o.ID] = o
	for _, e := range responsibles {
		m.d.responsibles = append(m.d.responsibles, models.OrganizationResponsible{
			ID: uuid.New(), OrganizationID: o.ID, UserID: e.ID,
		})
	}
	return o
}

func (m *memStore) tenderVersions(id uuid.UUID) []models.TenderVersion {
	var out []models.TenderVersion
	for _, v := range m.d.tenderVersions {
		if v.TenderID == id {
			out = append(out, v)
		}
	}
	return out
}

func (m *memStore) bidVersions(id uuid.UUID) []models.BidVersion {
	var out []models.BidVersion
	for _, v := range m.d.bidVersions {
		if v.BidID == id {
			out = append(out, v)
		}
	}
	return out
}
