// internal/repository/postgres/catalog_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"beatreach-service/internal/domain/catalog"
	xerrors "beatreach-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// CatalogRepository reads the storefront-owned catalog tables. All methods
// are read-only; the catalog is maintained by the commerce platform.
type CatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// FindProduct retrieves a digital product by ID.
func (r *CatalogRepository) FindProduct(ctx context.Context, id string) (*catalog.Product, error) {
	query := `
		SELECT id, store_id, title, description, product_type, product_category, genre, created_at
		FROM products
		WHERE id = $1
	`

	var p catalog.Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.StoreID, &p.Title, &p.Description, &p.ProductType, &p.ProductCategory,
		&p.Genre, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return &p, nil
}

// FindCourse retrieves a course by ID.
func (r *CatalogRepository) FindCourse(ctx context.Context, id string) (*catalog.Course, error) {
	query := `
		SELECT id, store_id, title, slug, description, category, skill_level, created_at
		FROM courses
		WHERE id = $1
	`

	var c catalog.Course
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.StoreID, &c.Title, &c.Slug, &c.Description, &c.Category, &c.SkillLevel,
		&c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find course: %w", err)
	}

	return &c, nil
}

// ListCourseIDs returns the IDs of all courses belonging to a store.
func (r *CatalogRepository) ListCourseIDs(ctx context.Context, storeID string) ([]string, error) {
	query := `SELECT id FROM courses WHERE store_id = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list course IDs: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan course ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// FindCustomerByEmail retrieves a store's customer record by email.
func (r *CatalogRepository) FindCustomerByEmail(ctx context.Context, storeID, email string) (*catalog.Customer, error) {
	query := `
		SELECT id, store_id, user_id, email, created_at
		FROM customers
		WHERE store_id = $1 AND email = $2
	`

	var c catalog.Customer
	err := r.db.QueryRow(ctx, query, storeID, strings.ToLower(email)).Scan(
		&c.ID, &c.StoreID, &c.UserID, &c.Email, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	return &c, nil
}

// ListPurchasesByCustomer retrieves a customer's purchase history.
func (r *CatalogRepository) ListPurchasesByCustomer(ctx context.Context, customerID string) ([]catalog.Purchase, error) {
	query := `
		SELECT id, customer_id, product_id, course_id, amount, created_at
		FROM purchases
		WHERE customer_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	purchases := []catalog.Purchase{}
	for rows.Next() {
		var p catalog.Purchase
		err := rows.Scan(&p.ID, &p.CustomerID, &p.ProductID, &p.CourseID, &p.Amount, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}

	return purchases, rows.Err()
}

// ListEnrollmentsPage returns one keyset page of enrollments in the given
// courses, ordered by enrollment ID.
func (r *CatalogRepository) ListEnrollmentsPage(ctx context.Context, courseIDs []string, afterID string, limit int) ([]catalog.Enrollment, error) {
	query := `
		SELECT id, course_id, user_id, progress, created_at
		FROM enrollments
		WHERE course_id = ANY($1) AND id > $2
		ORDER BY id
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, pq.StringArray(courseIDs), afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := []catalog.Enrollment{}
	for rows.Next() {
		var e catalog.Enrollment
		err := rows.Scan(&e.ID, &e.CourseID, &e.UserID, &e.Progress, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, e)
	}

	return enrollments, rows.Err()
}

// FindUser retrieves a platform user by ID.
func (r *CatalogRepository) FindUser(ctx context.Context, id string) (*catalog.User, error) {
	query := `SELECT id, email, name FROM users WHERE id = $1`

	var u catalog.User
	err := r.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &u, nil
}
