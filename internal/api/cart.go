package api

import (
	"net/http"
)

type addToCartRequest struct {
	EventID  int64 `json:"event_id" validate:"required,gt=0"`
	Quantity int64 `json:"quantity" validate:"required,gte=1"`
}

type updateCartRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gte=1"`
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	cart, err := s.cartService.GetCart(r.Context(), claims.UserID)
	if writeServiceError(w, err) {
		s.logger.Error().Err(err).Int64("user_id", claims.UserID).Msg("get cart")
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Please provide an event and quantity")
		return
	}

	claims := claimsFrom(r.Context())
	cart, err := s.cartService.AddToCart(r.Context(), claims.UserID, req.EventID, req.Quantity)
	if writeServiceError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(r, "itemID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}

	var req updateCartRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	claims := claimsFrom(r.Context())
	cart, err := s.cartService.UpdateQuantity(r.Context(), claims.UserID, itemID, req.Quantity)
	if writeServiceError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := idParam(r, "itemID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid cart item id")
		return
	}

	claims := claimsFrom(r.Context())
	cart, err := s.cartService.RemoveItem(r.Context(), claims.UserID, itemID)
	if writeServiceError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	if err := s.cartService.ClearCart(r.Context(), claims.UserID); writeServiceError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"msg": "Cart cleared"})
}
