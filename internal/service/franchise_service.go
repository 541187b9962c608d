package service

import (
	"context"
	"errors"
	"fmt"

	"pizza_service/internal/model"
	"pizza_service/internal/repository"

	"go.uber.org/zap"
)

type FranchiseService interface {
	ListFranchises(ctx context.Context, caller *model.User) ([]model.Franchise, error)
	ListUserFranchises(ctx context.Context, caller *model.User, userID int) ([]model.Franchise, error)
	CreateFranchise(ctx context.Context, req model.CreateFranchiseRequest) (*model.Franchise, error)
	DeleteFranchise(ctx context.Context, franchiseID int) error
	CreateStore(ctx context.Context, caller *model.User, franchiseID int, name string) (*model.Store, error)
	DeleteStore(ctx context.Context, caller *model.User, franchiseID, storeID int) error
}

type franchiseService struct {
	franchiseRepo repository.FranchiseRepository
	userRepo      repository.UserRepository
	log           *zap.Logger
}

func NewFranchiseService(franchiseRepo repository.FranchiseRepository, userRepo repository.UserRepository, log *zap.Logger) FranchiseService {
	return &franchiseService{
		franchiseRepo: franchiseRepo,
		userRepo:      userRepo,
		log:           log.Named("franchise"),
	}
}

// ListFranchises shows revenue and admins to admins only; everyone else sees store names.
func (s *franchiseService) ListFranchises(ctx context.Context, caller *model.User) ([]model.Franchise, error) {
	franchises, err := s.franchiseRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	admin := caller.HasRole(model.RoleAdmin)
	for i := range franchises {
		if admin {
			err = s.fillDetail(ctx, &franchises[i])
		} else {
			franchises[i].Stores, err = s.franchiseRepo.Stores(ctx, franchises[i].ID)
		}
		if err != nil {
			return nil, err
		}
	}
	return franchises, nil
}

// ListUserFranchises returns the franchises userID administers, in full detail. Callers
// other than that user or an admin get an empty list.
func (s *franchiseService) ListUserFranchises(ctx context.Context, caller *model.User, userID int) ([]model.Franchise, error) {
	if caller == nil || (caller.ID != userID && !caller.HasRole(model.RoleAdmin)) {
		return []model.Franchise{}, nil
	}
	franchises, err := s.franchiseRepo.ListByFranchisee(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range franchises {
		if err := s.fillDetail(ctx, &franchises[i]); err != nil {
			return nil, err
		}
	}
	return franchises, nil
}

func (s *franchiseService) fillDetail(ctx context.Context, f *model.Franchise) error {
	var err error
	if f.Admins, err = s.franchiseRepo.Admins(ctx, f.ID); err != nil {
		return err
	}
	f.Stores, err = s.franchiseRepo.StoresWithRevenue(ctx, f.ID)
	return err
}

// CreateFranchise requires every admin to be an existing user.
func (s *franchiseService) CreateFranchise(ctx context.Context, req model.CreateFranchiseRequest) (*model.Franchise, error) {
	f := &model.Franchise{Name: req.Name, Admins: []model.FranchiseAdmin{}, Stores: []model.Store{}}
	for _, a := range req.Admins {
		user, err := s.userRepo.FindByEmail(ctx, a.Email)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, newError(ErrInvalidReference, "unknown user for franchise admin %s provided", a.Email)
		}
		f.Admins = append(f.Admins, model.FranchiseAdmin{ID: user.ID, Name: user.Name, Email: user.Email})
	}

	if err := s.franchiseRepo.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicateFranchise) {
			return nil, newError(ErrConflict, "franchise %s already exists", req.Name)
		}
		return nil, fmt.Errorf("failed to create franchise: %w", err)
	}
	return f, nil
}

func (s *franchiseService) DeleteFranchise(ctx context.Context, franchiseID int) error {
	if err := s.franchiseRepo.Delete(ctx, franchiseID); err != nil {
		s.log.Error("franchise delete rolled back", zap.Int("franchise_id", franchiseID), zap.Error(err))
		return &Error{Kind: ErrOperationFailed, Msg: "unable to delete franchise"}
	}
	return nil
}

// canManage reports whether caller may change the stores of franchiseID. The franchise
// must exist even for admins.
func (s *franchiseService) canManage(ctx context.Context, caller *model.User, franchiseID int) (bool, error) {
	f, err := s.franchiseRepo.FindByID(ctx, franchiseID)
	if err != nil {
		return false, err
	}
	if f == nil {
		return false, nil
	}
	return caller.HasRole(model.RoleAdmin) || caller.IsFranchisee(franchiseID), nil
}

func (s *franchiseService) CreateStore(ctx context.Context, caller *model.User, franchiseID int, name string) (*model.Store, error) {
	ok, err := s.canManage(ctx, caller, franchiseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newError(ErrUnauthorized, "unable to create a store")
	}

	store := &model.Store{FranchiseID: franchiseID, Name: name}
	if err := s.franchiseRepo.CreateStore(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *franchiseService) DeleteStore(ctx context.Context, caller *model.User, franchiseID, storeID int) error {
	ok, err := s.canManage(ctx, caller, franchiseID)
	if err != nil {
		return err
	}
	if !ok {
		return newError(ErrUnauthorized, "unable to delete a store")
	}
	return s.franchiseRepo.DeleteStore(ctx, franchiseID, storeID)
}
