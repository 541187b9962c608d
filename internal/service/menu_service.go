package service

import (
	"context"
	"fmt"
	"time"

	"pizza_service/internal/model"
	"pizza_service/internal/repository"

	"go.uber.org/zap"
)

type MenuService interface {
	GetMenu(ctx context.Context) ([]model.MenuItem, error)
	AddMenuItem(ctx context.Context, item *model.MenuItem) ([]model.MenuItem, error)
	SetChaos(ctx context.Context, enabled bool) error
}

type menuService struct {
	menuRepo   repository.MenuRepository
	chaos      ChaosSwitch
	chaosDelay time.Duration
	log        *zap.Logger
}

func NewMenuService(menuRepo repository.MenuRepository, chaos ChaosSwitch, chaosDelay time.Duration, log *zap.Logger) MenuService {
	return &menuService{
		menuRepo:   menuRepo,
		chaos:      chaos,
		chaosDelay: chaosDelay,
		log:        log.Named("menu"),
	}
}

// GetMenu returns the whole menu. While chaos is on the read is held back by the
// configured delay, or until the caller goes away.
func (s *menuService) GetMenu(ctx context.Context) ([]model.MenuItem, error) {
	on, err := s.chaos.Enabled(ctx)
	if err != nil {
		s.log.Warn("chaos flag unavailable, serving menu normally", zap.Error(err))
	}
	if on && s.chaosDelay > 0 {
		timer := time.NewTimer(s.chaosDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}

	items, err := s.menuRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}
	return items, nil
}

func (s *menuService) AddMenuItem(ctx context.Context, item *model.MenuItem) ([]model.MenuItem, error) {
	if err := s.menuRepo.Add(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add menu item: %w", err)
	}
	items, err := s.menuRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}
	return items, nil
}

func (s *menuService) SetChaos(ctx context.Context, enabled bool) error {
	if err := s.chaos.Set(ctx, enabled); err != nil {
		return err
	}
	s.log.Warn("chaos toggled", zap.Bool("enabled", enabled))
	return nil
}
