package navigation

import (
	"context"
	"fmt"
	"time"

	"github.com/moveplan/moveplan/internal/utils"
	"github.com/moveplan/moveplan/pkg/page"
	"github.com/moveplan/moveplan/pkg/storage"
	log "github.com/sirupsen/logrus"
)

const (
	stateKey  = "navigation-state"
	visitsKey = "visits"
)

type State struct {
	CurrentPage  page.Page `json:"currentPage"`
	PreviousPage page.Page `json:"previousPage,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Visits       int       `json:"visits"`
}

type Service struct {
	storage storage.Service
	clock   utils.Clock
}

func NewService(storage storage.Service, clock utils.Clock) *Service {
	return &Service{storage: storage, clock: clock}
}

// Visit records that p was opened: the previous current page moves to
// PreviousPage and the visit counter grows by one.
func (s *Service) Visit(ctx context.Context, p page.Page) (State, error) {
	state, err := s.State(ctx)
	if err != nil {
		return State{}, err
	}

	next := State{
		CurrentPage:  p,
		PreviousPage: state.CurrentPage,
		Timestamp:    s.clock.Now(),
		Visits:       state.Visits + 1,
	}
	ctx = page.WithPage(ctx, p)
	if _, err := s.storage.Save(ctx, stateKey, next); err != nil {
		return State{}, fmt.Errorf("failed to save navigation state: %w", err)
	}
	if _, err := s.storage.Save(ctx, visitsKey, next.Visits); err != nil {
		return State{}, fmt.Errorf("failed to save visit counter: %w", err)
	}
	log.Debugf("visit %d: %s -> %s", next.Visits, next.PreviousPage, next.CurrentPage)
	return next, nil
}

func (s *Service) State(ctx context.Context) (State, error) {
	var state State
	if _, err := s.storage.LoadInto(ctx, stateKey, &state); err != nil {
		return State{}, err
	}
	var visits int
	if _, err := s.storage.LoadInto(ctx, visitsKey, &visits); err != nil {
		return State{}, err
	}
	state.Visits = visits
	return state, nil
}
