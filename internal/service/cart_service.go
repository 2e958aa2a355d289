package service

import (
	"context"
	"fmt"

	"eventhub/internal/domain"
	"eventhub/internal/models"
)

type CartService struct {
	repo domain.Repository
}

func NewCartService(repo domain.Repository) *CartService {
	return &CartService{repo: repo}
}

// GetCart always returns a cart object, empty when the user has no items.
func (s *CartService) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {
	items, err := s.repo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.CartItem{}
	}

	cart := &models.Cart{Items: items}
	cart.TotalAmount = cart.Total()
	return cart, nil
}

// AddToCart snapshots the event price; adding an event already in the cart
// bumps its quantity instead of creating a second line.
func (s *CartService) AddToCart(ctx context.Context, userID, eventID, quantity int64) (*models.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddCartItem(ctx, userID, eventID, quantity, event.Price); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID, quantity int64) (*models.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	if err := s.repo.UpdateCartItemQuantity(ctx, userID, itemID, quantity); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int64) (*models.Cart, error) {
	if err := s.repo.RemoveCartItem(ctx, userID, itemID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	return s.repo.ClearCart(ctx, userID)
}
