package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/papayaah/invoicees/internal/common"
	"github.com/papayaah/invoicees/internal/entity"
	"github.com/papayaah/invoicees/internal/invoice"
)

// InvoiceRepository stores invoice snapshots keyed by invoice ID.
type InvoiceRepository interface {
	Save(ctx context.Context, inv entity.Invoice) (entity.SavedInvoice, error)
	Get(ctx context.Context, id uuid.UUID) (entity.SavedInvoice, error)
	// List returns every saved invoice, most recently saved first.
	List(ctx context.Context) ([]entity.SavedInvoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// Reset deletes every saved invoice and reports how many were removed.
	Reset(ctx context.Context) (int64, error)
	RemoveItem(ctx context.Context, id uuid.UUID, index int) (entity.SavedInvoice, error)
}

type invoiceRepository struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

func NewInvoiceRepository(db *DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{db: db, logger: logger, now: time.Now}
}

func validateInvoice(inv entity.Invoice) error {
	id := ""
	if inv.ID != uuid.Nil {
		id = inv.ID.String()
	}
	v := common.NewValidator().
		Field("id", id, common.Required, common.UUID).
		Field("businessName", inv.BusinessName, common.MaxLength(500)).
		Field("clientName", inv.ClientName, common.MaxLength(500))
	for i, it := range inv.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		v.Field(prefix+"description", it.Description, common.Required, common.MaxLength(2000)).
			Field(prefix+"unitPrice", it.UnitPrice, common.NonNegative).
			Field(prefix+"quantity", it.Quantity, common.Finite)
	}
	return common.ValidateAndReturnError(v)
}

func (r *invoiceRepository) Save(ctx context.Context, inv entity.Invoice) (entity.SavedInvoice, error) {
	if err := validateInvoice(inv); err != nil {
		return entity.SavedInvoice{}, err
	}
	if inv.Items == nil {
		inv.Items = []entity.LineItem{}
	}
	data, err := json.Marshal(inv)
	if err != nil {
		return entity.SavedInvoice{}, fmt.Errorf("encode invoice: %w", err)
	}
	saved := entity.SavedInvoice{Invoice: inv, SavedAt: r.now().UTC()}

	q := r.db.rebind(`INSERT INTO invoices (id, business_name, client_name, total, data, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			business_name = excluded.business_name,
			client_name   = excluded.client_name,
			total         = excluded.total,
			data          = excluded.data,
			saved_at      = excluded.saved_at`)
	_, err = r.db.sql.ExecContext(ctx, q,
		inv.ID.String(), inv.BusinessName, inv.ClientName,
		invoice.CalculateTotal(inv.Items), string(data), saved.SavedAt.UnixMilli(),
	)
	if err != nil {
		r.logger.Error("repo.invoice.save_error", "invoice_id", inv.ID, "error", err)
		return entity.SavedInvoice{}, common.NewAppError("DB_ERROR", "save invoice", errors.Join(common.ErrDatabase, err))
	}
	r.logger.Debug("repo.invoice.saved", "invoice_id", inv.ID, "items", len(inv.Items))
	return saved, nil
}

func (r *invoiceRepository) Get(ctx context.Context, id uuid.UUID) (entity.SavedInvoice, error) {
	row := r.db.sql.QueryRowContext(ctx, r.db.rebind(`SELECT data, saved_at FROM invoices WHERE id = ?`), id.String())
	saved, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.SavedInvoice{}, common.NotFoundError("invoice " + id.String())
	}
	if err != nil {
		return entity.SavedInvoice{}, common.NewAppError("DB_ERROR", "get invoice", errors.Join(common.ErrDatabase, err))
	}
	return saved, nil
}

func (r *invoiceRepository) List(ctx context.Context) ([]entity.SavedInvoice, error) {
	rows, err := r.db.sql.QueryContext(ctx, `SELECT data, saved_at FROM invoices ORDER BY saved_at DESC, id`)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "list invoices", errors.Join(common.ErrDatabase, err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("repo.invoice.rows_close_error", "error", err)
		}
	}()

	out := make([]entity.SavedInvoice, 0)
	for rows.Next() {
		saved, err := scanInvoice(rows)
		if err != nil {
			return nil, common.NewAppError("DB_ERROR", "scan invoice", errors.Join(common.ErrDatabase, err))
		}
		out = append(out, saved)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("DB_ERROR", "list invoices", errors.Join(common.ErrDatabase, err))
	}
	return out, nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.sql.ExecContext(ctx, r.db.rebind(`DELETE FROM invoices WHERE id = ?`), id.String())
	if err != nil {
		return common.NewAppError("DB_ERROR", "delete invoice", errors.Join(common.ErrDatabase, err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NotFoundError("invoice " + id.String())
	}
	r.logger.Info("repo.invoice.deleted", "invoice_id", id)
	return nil
}

func (r *invoiceRepository) Reset(ctx context.Context) (int64, error) {
	res, err := r.db.sql.ExecContext(ctx, `DELETE FROM invoices`)
	if err != nil {
		return 0, common.NewAppError("DB_ERROR", "reset invoices", errors.Join(common.ErrDatabase, err))
	}
	n, _ := res.RowsAffected()
	r.logger.Info("repo.invoice.reset", "deleted", n)
	return n, nil
}

func (r *invoiceRepository) RemoveItem(ctx context.Context, id uuid.UUID, index int) (entity.SavedInvoice, error) {
	saved, err := r.Get(ctx, id)
	if err != nil {
		return entity.SavedInvoice{}, err
	}
	if index < 0 || index >= len(saved.Items) {
		return entity.SavedInvoice{}, common.InvalidArgumentErrorf("item %d out of range (invoice has %d)", index, len(saved.Items))
	}
	inv := saved.Invoice
	inv.Items = slices.Delete(slices.Clone(inv.Items), index, index+1)
	return r.Save(ctx, inv)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (entity.SavedInvoice, error) {
	var (
		data    string
		savedAt int64
	)
	if err := row.Scan(&data, &savedAt); err != nil {
		return entity.SavedInvoice{}, err
	}
	var inv entity.Invoice
	if err := json.Unmarshal([]byte(data), &inv); err != nil {
		return entity.SavedInvoice{}, fmt.Errorf("decode invoice: %w", err)
	}
	if inv.Items == nil {
		inv.Items = []entity.LineItem{}
	}
	return entity.SavedInvoice{Invoice: inv, SavedAt: time.UnixMilli(savedAt).UTC()}, nil
}
