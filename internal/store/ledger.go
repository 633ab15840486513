package store

import (
	"context"
	"time"

	"github.com/diewo77/go-schools/internal/models"
	"gorm.io/gorm/clause"
)

func (s *Store) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	return classify(s.conn(ctx).Create(inv).Error)
}

func (s *Store) Invoice(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.conn(ctx).First(&inv, id).Error; err != nil {
		return nil, classify(err)
	}
	return &inv, nil
}

// InvoiceForUpdate loads an invoice and locks its row until the surrounding
// transaction ends. SQLite has no row locks and serializes writers instead.
func (s *Store) InvoiceForUpdate(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, id).Error; err != nil {
		return nil, classify(err)
	}
	return &inv, nil
}

func (s *Store) InvoicesForStudent(ctx context.Context, studentID uint) ([]models.Invoice, error) {
	var out []models.Invoice
	if err := s.conn(ctx).Where("student_id = ?", studentID).Order("due_date, id").Find(&out).Error; err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// ActiveInvoices returns every invoice that has not been cancelled, by due date.
func (s *Store) ActiveInvoices(ctx context.Context) ([]models.Invoice, error) {
	var out []models.Invoice
	err := s.conn(ctx).
		Where("status <> ? AND cancelled_at IS NULL", models.InvoiceStatusCancelled).
		Order("due_date, id").
		Find(&out).Error
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (s *Store) UpdateInvoiceStatus(ctx context.Context, id uint, status models.InvoiceStatus) error {
	res := s.conn(ctx).Model(&models.Invoice{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CancelInvoice(ctx context.Context, id uint, at time.Time) error {
	res := s.conn(ctx).Model(&models.Invoice{}).Where("id = ?", id).Updates(map[string]any{
		"status":       models.InvoiceStatusCancelled,
		"cancelled_at": at,
	})
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) CreatePayment(ctx context.Context, p *models.Payment) error {
	return classify(s.conn(ctx).Create(p).Error)
}

func (s *Store) PaymentsForInvoice(ctx context.Context, invoiceID uint) ([]models.Payment, error) {
	var out []models.Payment
	if err := s.conn(ctx).Where("invoice_id = ?", invoiceID).Order("paid_at, id").Find(&out).Error; err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// PaymentsForInvoices returns the payments of several invoices in one query, keyed by invoice id.
func (s *Store) PaymentsForInvoices(ctx context.Context, invoiceIDs []uint) (map[uint][]models.Payment, error) {
	out := make(map[uint][]models.Payment, len(invoiceIDs))
	if len(invoiceIDs) == 0 {
		return out, nil
	}
	var rows []models.Payment
	if err := s.conn(ctx).Where("invoice_id IN ?", invoiceIDs).Order("paid_at, id").Find(&rows).Error; err != nil {
		return nil, classify(err)
	}
	for _, p := range rows {
		out[p.InvoiceID] = append(out[p.InvoiceID], p)
	}
	return out, nil
}

func (s *Store) CreateReceipt(ctx context.Context, r *models.Receipt) error {
	return classify(s.conn(ctx).Create(r).Error)
}

func (s *Store) ReceiptForPayment(ctx context.Context, paymentID uint) (*models.Receipt, error) {
	var r models.Receipt
	if err := s.conn(ctx).Where("payment_id = ?", paymentID).First(&r).Error; err != nil {
		return nil, classify(err)
	}
	return &r, nil
}
