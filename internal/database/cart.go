package database

import (
	"context"
	"fmt"
	"time"

	"eventhub/internal/models"
)

func (db *DB) GetCartItems(ctx context.Context, userID int64) ([]models.CartItem, error) {
	query := `SELECT c.id, c.user_id, c.event_id, c.quantity, c.price, c.created_at, c.updated_at,
	                 e.title, e.date, e.image
	          FROM cart_items c
	          JOIN events e ON e.id = c.event_id
	          WHERE c.user_id = ?
	          ORDER BY c.created_at ASC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var item models.CartItem
		err := rows.Scan(
			&item.ID, &item.UserID, &item.EventID, &item.Quantity, &item.Price,
			&item.CreatedAt, &item.UpdatedAt,
			&item.EventTitle, &item.EventDate, &item.EventImage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddCartItem appends a new line or bumps the quantity when the event is
// already in the cart. The price snapshot is taken on first add.
func (db *DB) AddCartItem(ctx context.Context, userID, eventID, quantity int64, price float64) error {
	query := `INSERT INTO cart_items (user_id, event_id, quantity, price, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)
	          ON CONFLICT(user_id, event_id) DO UPDATE SET
	              quantity = quantity + excluded.quantity,
	              updated_at = excluded.updated_at`
	now := time.Now()
	_, err := db.ExecContext(ctx, query, userID, eventID, quantity, price, now, now)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (db *DB) UpdateCartItemQuantity(ctx context.Context, userID, itemID, quantity int64) error {
	query := `UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ? AND user_id = ?`
	result, err := db.ExecContext(ctx, query, quantity, time.Now(), itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) RemoveCartItem(ctx context.Context, userID, itemID int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ? AND user_id = ?`, itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) ClearCart(ctx context.Context, userID int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
