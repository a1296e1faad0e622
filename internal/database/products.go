package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pethotel/internal/models"
)

func (db *DB) CreateCategory(ctx context.Context, c *models.Category) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, `INSERT INTO categories (name, created_at) VALUES (?, ?)`, c.Name, now)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	return nil
}

func (db *DB) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (db *DB) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `INSERT INTO products (name, category_id, price, stock, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx, query,
		p.Name,
		p.CategoryID,
		p.Price,
		p.Stock,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (db *DB) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	query := `SELECT id, name, category_id, price, stock, created_at, updated_at FROM products WHERE id = ?`
	err := db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.CategoryID, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (db *DB) ListProducts(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT id, name, category_id, price, stock, created_at, updated_at FROM products ORDER BY name`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.CategoryID, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// RecordSale decrements stock for every item, fills in unit prices and the
// total, and stores the sale. Nothing is written when any item lacks stock.
func (db *DB) RecordSale(ctx context.Context, s *models.Sale) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	var total float64
	for i := range s.Items {
		item := &s.Items[i]

		var price float64
		err := tx.QueryRowContext(ctx, `SELECT price FROM products WHERE id = ?`, item.ProductID).Scan(&price)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("product %d: %w", item.ProductID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to load product in tx: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?`,
			item.Quantity, now, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("product %d: %w", item.ProductID, ErrInsufficientStock)
		}

		item.UnitPrice = price
		total += price * float64(item.Quantity)
	}

	s.Total = total
	s.CreatedAt = now
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sales (id, total, client_id, payment_method, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Total, sql.NullString{String: s.ClientID, Valid: s.ClientID != ""}, s.PaymentMethod, now)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	for _, item := range s.Items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO sale_items (sale_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?)`,
			s.ID, item.ProductID, item.Quantity, item.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to insert sale item: %w", err)
		}
	}

	return tx.Commit()
}

// ListSales returns every sale with its items, newest first.
func (db *DB) ListSales(ctx context.Context) ([]*models.Sale, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, total, client_id, payment_method, created_at FROM sales ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	sales := []*models.Sale{}
	byID := make(map[string]*models.Sale)
	for rows.Next() {
		s := &models.Sale{}
		var clientID sql.NullString
		if err := rows.Scan(&s.ID, &s.Total, &clientID, &s.PaymentMethod, &s.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		s.ClientID = clientID.String
		sales = append(sales, s)
		byID[s.ID] = s
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := db.QueryContext(ctx,
		`SELECT sale_id, product_id, quantity, unit_price FROM sale_items ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var saleID string
		var item models.SaleItem
		if err := itemRows.Scan(&saleID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		if s, ok := byID[saleID]; ok {
			s.Items = append(s.Items, item)
		}
	}
	return sales, itemRows.Err()
}
