package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rentautopro/internal/db"
	"rentautopro/internal/entities"
)

type InvoiceRepository interface {
	List() ([]entities.InvoiceDetail, error)
	GetByID(id string) (*db.Invoice, error)
	GetByRentalID(rentalID string) (*db.Invoice, error)
	GetByStripeSessionID(sessionID string) (*db.Invoice, error)
	Create(inv *db.Invoice) error
	UpdateStatus(id, status string) error
	SetStripeSession(id, sessionID string) error
	CountForMonth(yearMonth string) (int, error)
	MarkOverdue(now time.Time) (int64, error)
}

type invoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(conn *sql.DB) InvoiceRepository {
	return &invoiceRepository{db: conn}
}

const invoiceSelect = `
	SELECT id, rental_id, invoice_number, issue_date, due_date, subtotal, tax_amount,
	       total_amount, status, stripe_session_id, created_at, updated_at
	FROM invoices
	WHERE deleted_at IS NULL`

func scanInvoice(s interface{ Scan(...interface{}) error }, inv *db.Invoice) error {
	return s.Scan(&inv.ID, &inv.RentalID, &inv.InvoiceNumber, &inv.IssueDate, &inv.DueDate,
		&inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount, &inv.Status, &inv.StripeSessionID,
		&inv.CreatedAt, &inv.UpdatedAt)
}

func (r *invoiceRepository) List() ([]entities.InvoiceDetail, error) {
	query := `
		SELECT i.id, i.rental_id, i.invoice_number, i.issue_date, i.due_date, i.subtotal,
		       i.tax_amount, i.total_amount, i.status, i.stripe_session_id, i.created_at, i.updated_at,
		       r.id, r.vehicle_id, r.customer_id, r.start_date, r.end_date, r.daily_rate,
		       r.total_amount, r.status
		FROM invoices i
		JOIN rentals r ON i.rental_id = r.id
		WHERE i.deleted_at IS NULL
		ORDER BY i.issue_date DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying invoices: %w", err)
	}
	defer rows.Close()

	var details []entities.InvoiceDetail
	for rows.Next() {
		var d entities.InvoiceDetail
		var rn db.Rental
		err := rows.Scan(
			&d.ID, &d.RentalID, &d.InvoiceNumber, &d.IssueDate, &d.DueDate, &d.Subtotal,
			&d.TaxAmount, &d.TotalAmount, &d.Status, &d.StripeSessionID, &d.CreatedAt, &d.UpdatedAt,
			&rn.ID, &rn.VehicleID, &rn.CustomerID, &rn.StartDate, &rn.EndDate, &rn.DailyRate,
			&rn.TotalAmount, &rn.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning invoice: %w", err)
		}
		d.Rental = &rn
		details = append(details, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating invoices: %w", err)
	}
	return details, nil
}

func (r *invoiceRepository) getOne(where string, arg interface{}) (*db.Invoice, error) {
	var inv db.Invoice
	err := scanInvoice(r.db.QueryRow(invoiceSelect+where, arg), &inv)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying invoice: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepository) GetByID(id string) (*db.Invoice, error) {
	return r.getOne(` AND id = $1`, id)
}

func (r *invoiceRepository) GetByRentalID(rentalID string) (*db.Invoice, error) {
	return r.getOne(` AND rental_id = $1`, rentalID)
}

func (r *invoiceRepository) GetByStripeSessionID(sessionID string) (*db.Invoice, error) {
	return r.getOne(` AND stripe_session_id = $1`, sessionID)
}

func (r *invoiceRepository) Create(inv *db.Invoice) error {
	query := `
		INSERT INTO invoices
		(rental_id, invoice_number, issue_date, due_date, subtotal, tax_amount, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRow(query,
		inv.RentalID, inv.InvoiceNumber, inv.IssueDate, inv.DueDate,
		inv.Subtotal, inv.TaxAmount, inv.TotalAmount, inv.Status,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
}

func (r *invoiceRepository) UpdateStatus(id, status string) error {
	res, err := r.db.Exec(`UPDATE invoices SET status = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id, status)
	if err != nil {
		return fmt.Errorf("error updating invoice status: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *invoiceRepository) SetStripeSession(id, sessionID string) error {
	_, err := r.db.Exec(`UPDATE invoices SET stripe_session_id = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`, id, sessionID)
	if err != nil {
		return fmt.Errorf("error saving stripe session: %w", err)
	}
	return nil
}

// CountForMonth counts invoices issued in the given YYYYMM month; used to
// derive the next sequential invoice number.
func (r *invoiceRepository) CountForMonth(yearMonth string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(1) FROM invoices WHERE to_char(issue_date, 'YYYYMM') = $1`, yearMonth).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("error counting invoices for month: %w", err)
	}
	return n, nil
}

// MarkOverdue flips pending invoices past their due date to overdue.
func (r *invoiceRepository) MarkOverdue(now time.Time) (int64, error) {
	res, err := r.db.Exec(`
		UPDATE invoices SET status = $1, updated_at = now()
		WHERE status = $2 AND due_date < $3 AND deleted_at IS NULL`,
		db.InvoiceOverdue, db.InvoicePending, now)
	if err != nil {
		return 0, fmt.Errorf("error marking invoices overdue: %w", err)
	}
	return res.RowsAffected()
}
