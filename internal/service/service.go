package service

import (
	"tender-marketplace/models"

	"go.uber.org/zap"
)

// QuorumCounting задаёт, какие решения идут в текущий кворум.
type QuorumCounting int

const (
	// CountAllDecisions считает все записанные решения, включая отказы.
	CountAllDecisions QuorumCounting = iota
	// CountApprovedOnly считает только одобрения.
	CountApprovedOnly
)

const defaultQuorumCap = 3

// Recorder получает доменные события для метрик.
type Recorder interface {
	DecisionRecorded(decision string)
	RolledBack(entity string)
	TenderClosed()
	BidCanceled()
}

type nopRecorder struct{}

func (nopRecorder) DecisionRecorded(string) {}
func (nopRecorder) RolledBack(string)       {}
func (nopRecorder) TenderClosed()           {}
func (nopRecorder) BidCanceled()            {}

type Option func(*Service)

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.rec = r
		}
	}
}

// WithQuorum задаёт потолок кворума и способ подсчёта решений.
func WithQuorum(limit int, counting QuorumCounting) Option {
	return func(s *Service) {
		if limit > 0 {
			s.quorumCap = limit
		}
		s.counting = counting
	}
}

// Service реализует операции над тендерами и предложениями.
// Каждая операция записи выполняется в одной транзакции хранилища.
type Service struct {
	store     models.Store
	log       *zap.Logger
	rec       Recorder
	quorumCap int
	counting  QuorumCounting
}

func New(store models.Store, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:     store,
		log:       log,
		rec:       nopRecorder{},
		quorumCap: defaultQuorumCap,
		counting:  CountAllDecisions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Page - параметры пагинации, передаются в хранилище как есть.
type Page struct {
	Limit  int
	Offset int
}
