package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"pizza_service/internal/fulfillment"
	"pizza_service/internal/model"
	"pizza_service/internal/repository"

	"go.uber.org/zap"
)

// priceTolerance absorbs float noise between the client's copy of a price and the menu's.
const priceTolerance = 1e-6

// Fulfiller hands a persisted order to the factory.
type Fulfiller interface {
	Submit(ctx context.Context, diner *model.User, order *model.Order) (*fulfillment.Receipt, error)
}

type OrderService interface {
	ListOrders(ctx context.Context, diner *model.User, page int) (*model.OrderPage, error)
	Checkout(ctx context.Context, diner *model.User, req model.CreateOrderRequest) (*model.CheckoutResult, error)
}

type orderService struct {
	orderRepo     repository.OrderRepository
	menuRepo      repository.MenuRepository
	franchiseRepo repository.FranchiseRepository
	factory       Fulfiller
	listPerPage   int
	log           *zap.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	menuRepo repository.MenuRepository,
	franchiseRepo repository.FranchiseRepository,
	factory Fulfiller,
	listPerPage int,
	log *zap.Logger,
) OrderService {
	return &orderService{
		orderRepo:     orderRepo,
		menuRepo:      menuRepo,
		franchiseRepo: franchiseRepo,
		factory:       factory,
		listPerPage:   listPerPage,
		log:           log.Named("order"),
	}
}

// ListOrders returns one page of the diner's orders. Pages start at 1; anything lower is page 1.
func (s *orderService) ListOrders(ctx context.Context, diner *model.User, page int) (*model.OrderPage, error) {
	if page < 1 {
		page = 1
	}
	// no offset can be that large, so the page is empty
	if s.listPerPage > 0 && page-1 > math.MaxInt/s.listPerPage {
		return &model.OrderPage{DinerID: diner.ID, Orders: []model.Order{}, Page: page}, nil
	}
	orders, err := s.orderRepo.ListByDiner(ctx, diner.ID, s.listPerPage, (page-1)*s.listPerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &model.OrderPage{DinerID: diner.ID, Orders: orders, Page: page}, nil
}

// Checkout validates the order against the franchise, store and menu, persists it with
// menu prices and then asks the factory to cook it. A factory failure does not undo the
// stored order; it is reported as an unfulfilled result instead of an error.
func (s *orderService) Checkout(ctx context.Context, diner *model.User, req model.CreateOrderRequest) (*model.CheckoutResult, error) {
	franchise, err := s.franchiseRepo.FindByID(ctx, req.FranchiseID)
	if err != nil {
		return nil, err
	}
	if franchise == nil {
		return nil, newError(ErrInvalidReference, "Invalid franchise")
	}

	store, err := s.franchiseRepo.FindStore(ctx, req.FranchiseID, req.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, newError(ErrInvalidReference, "Invalid store for franchise")
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		menu, err := s.menuRepo.FindByID(ctx, it.MenuID)
		if err != nil {
			return nil, err
		}
		if menu == nil {
			return nil, newError(ErrInvalidReference, "Item %d not on menu", it.MenuID)
		}
		if it.Description != menu.Description {
			return nil, newError(ErrDataMismatch, "Invalid description for menu item %d", it.MenuID)
		}
		if math.Abs(it.Price-menu.Price) > priceTolerance {
			return nil, newError(ErrDataMismatch, "Price mismatch detected")
		}
		items = append(items, model.OrderItem{MenuID: menu.ID, Description: menu.Description, Price: menu.Price})
	}

	order := &model.Order{
		DinerID:     diner.ID,
		FranchiseID: req.FranchiseID,
		StoreID:     req.StoreID,
		Items:       items,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	result := &model.CheckoutResult{Status: model.CheckoutUnfulfilled, Order: order}
	receipt, err := s.factory.Submit(ctx, diner, order)
	if err != nil {
		var fe *fulfillment.FactoryError
		if errors.As(err, &fe) {
			result.ReportURL = fe.ReportURL
		}
		s.log.Error("order persisted but not fulfilled",
			zap.Int("order_id", order.ID),
			zap.Int("diner_id", diner.ID),
			zap.Error(err))
		return result, nil
	}

	result.Status = model.CheckoutFulfilled
	result.FactoryJWT = receipt.JWT
	result.ReportURL = receipt.ReportURL
	return result, nil
}
