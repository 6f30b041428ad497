package journal

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"feedmart-pos/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// journalHarness scripts the backing store, if any, before each call.
type journalHarness struct {
	journal   Journal
	recording func(sale models.CompletedSale, fresh bool)
	getting   func(found *models.CompletedSale)
	listing   func(found []models.CompletedSale)
}

func (h journalHarness) expectRecord(sale models.CompletedSale, fresh bool) {
	if h.recording != nil {
		h.recording(sale, fresh)
	}
}

func (h journalHarness) expectGet(found *models.CompletedSale) {
	if h.getting != nil {
		h.getting(found)
	}
}

func (h journalHarness) expectList(found []models.CompletedSale) {
	if h.listing != nil {
		h.listing(found)
	}
}

func saleIDs(sales []models.CompletedSale) []string {
	out := make([]string, len(sales))
	for i, s := range sales {
		out[i] = s.ID
	}
	return out
}

func runJournalContract(t *testing.T, h journalHarness) {
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

	first := sale("S-1", 1, base)
	again := sale("S-1", 1, base.Add(time.Hour))
	again.Total = decimal.RequireFromString("99.00")
	later := sale("S-2", 1, base.Add(time.Minute))
	other := sale("S-3", 2, base.Add(2*time.Minute))

	h.expectRecord(first, true)
	require.NoError(t, h.journal.Record(ctx, first))

	h.expectRecord(again, false)
	require.NoError(t, h.journal.Record(ctx, again), "a repeated sale id is not an error")

	h.expectGet(&first)
	got, err := h.journal.Get(ctx, "S-1")
	require.NoError(t, err)
	assert.Equal(t, "30.00", got.Total.StringFixed(2), "first record wins")
	assert.True(t, got.CreatedAt.Equal(base))
	require.Len(t, got.Items, 1)
	assert.Equal(t, 4, got.Items[0].Quantity)

	h.expectGet(nil)
	_, err = h.journal.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	h.expectRecord(later, true)
	require.NoError(t, h.journal.Record(ctx, later))
	h.expectRecord(other, true)
	require.NoError(t, h.journal.Record(ctx, other))

	h.expectList([]models.CompletedSale{later, first})
	list, err := h.journal.ListByCashier(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"S-2", "S-1"}, saleIDs(list))

	h.expectList([]models.CompletedSale{later})
	list, err = h.journal.ListByCashier(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"S-2"}, saleIDs(list))

	h.expectList(nil)
	list, err = h.journal.ListByCashier(ctx, 9, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestJournalContractMemory(t *testing.T) {
	runJournalContract(t, journalHarness{journal: NewMemory()})
}

func nullable(s *string) driver.Value {
	if s == nil {
		return nil
	}
	return *s
}

var (
	recordColumns = []string{
		"id", "sale_id", "cashier_id", "payment_method", "status",
		"subtotal", "tax", "discount", "total", "amount_paid", "change",
		"reference", "customer_phone", "sold_at", "created_at",
	}
	lineColumns = []string{
		"id", "sale_record_id", "product_id", "name", "unit", "quantity", "unit_price", "line_total",
	}
)

// sqlmockHarness plays the postgres side of GormJournal. Rows handed back are
// built from toRecord, so reads go through the real column mapping.
type sqlmockHarness struct {
	mock sqlmock.Sqlmock
	ids  map[string]int64
	next int64
}

func (m *sqlmockHarness) recording(sale models.CompletedSale, fresh bool) {
	m.mock.ExpectBegin()
	insert := m.mock.ExpectQuery(`INSERT INTO "sale_records" .+ ON CONFLICT \("sale_id"\) DO NOTHING`)
	if !fresh {
		// the conflicting row is kept and no lines are written
		insert.WillReturnRows(sqlmock.NewRows([]string{"id"}))
		m.mock.ExpectCommit()
		return
	}
	m.next++
	m.ids[sale.ID] = m.next
	insert.WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(m.next))
	m.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "sale_record_lines"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(m.next))
	m.mock.ExpectCommit()
}

func (m *sqlmockHarness) rows(sales []models.CompletedSale) (*sqlmock.Rows, *sqlmock.Rows) {
	records := sqlmock.NewRows(recordColumns)
	lines := sqlmock.NewRows(lineColumns)
	for _, s := range sales {
		id := m.ids[s.ID]
		rec := toRecord(s)
		records.AddRow(id, rec.SaleID, rec.CashierID, int64(rec.PaymentMethod), rec.Status,
			rec.Subtotal, rec.Tax, rec.Discount, rec.Total, rec.AmountPaid, rec.Change,
			nullable(rec.Reference), nullable(rec.CustomerPhone), rec.SoldAt, rec.SoldAt)
		for _, l := range rec.Lines {
			lines.AddRow(id, id, l.ProductID, l.Name, l.Unit, int64(l.Quantity), l.UnitPrice, l.LineTotal)
		}
	}
	return records, lines
}

func (m *sqlmockHarness) getting(found *models.CompletedSale) {
	query := m.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sale_records" WHERE sale_id = $1`))
	if found == nil {
		query.WillReturnRows(sqlmock.NewRows(recordColumns))
		return
	}
	records, lines := m.rows([]models.CompletedSale{*found})
	query.WillReturnRows(records)
	m.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sale_record_lines" WHERE "sale_record_lines"."sale_record_id"`)).
		WillReturnRows(lines)
}

func (m *sqlmockHarness) listing(found []models.CompletedSale) {
	records, lines := m.rows(found)
	m.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sale_records" WHERE cashier_id = $1 ORDER BY sold_at DESC LIMIT`)).
		WillReturnRows(records)
	if len(found) > 0 {
		m.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sale_record_lines" WHERE "sale_record_lines"."sale_record_id"`)).
			WillReturnRows(lines)
	}
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestJournalContractGorm(t *testing.T) {
	db, mock := setupMockDB(t)
	m := &sqlmockHarness{mock: mock, ids: make(map[string]int64)}

	runJournalContract(t, journalHarness{
		journal:   NewGormJournal(db),
		recording: m.recording,
		getting:   m.getting,
		listing:   m.listing,
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormJournalRecordFailureRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	j := NewGormJournal(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "sale_records"`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "sale_record_lines"`)).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := j.Record(context.Background(), sale("S-9", 1, time.Now()))
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "record sale S-9")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, clampLimit(0))
	assert.Equal(t, DefaultListLimit, clampLimit(-3))
	assert.Equal(t, DefaultListLimit, clampLimit(501))
	assert.Equal(t, 500, clampLimit(500))
	assert.Equal(t, 7, clampLimit(7))
}
