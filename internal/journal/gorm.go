package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	dbmodels "feedmart-pos/internal/database/models"
	"feedmart-pos/internal/models"
	"feedmart-pos/internal/money"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormJournal struct {
	db *gorm.DB
}

func NewGormJournal(db *gorm.DB) *GormJournal {
	return &GormJournal{db: db}
}

// Record is idempotent on the sale id: a sale recorded twice keeps the first
// row.
func (j *GormJournal) Record(ctx context.Context, sale models.CompletedSale) error {
	rec := toRecord(sale)
	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "sale_id"}}, DoNothing: true}).
			Omit("Lines").Create(&rec)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 || len(rec.Lines) == 0 {
			return nil
		}
		for i := range rec.Lines {
			rec.Lines[i].SaleRecordID = rec.ID
		}
		return tx.Create(&rec.Lines).Error
	})
	if err != nil {
		return fmt.Errorf("record sale %s: %w", sale.ID, err)
	}
	return nil
}

func (j *GormJournal) Get(ctx context.Context, saleID string) (models.CompletedSale, error) {
	var rec dbmodels.SaleRecord
	err := j.db.WithContext(ctx).Preload("Lines").Where("sale_id = ?", saleID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.CompletedSale{}, ErrNotFound
	}
	if err != nil {
		return models.CompletedSale{}, fmt.Errorf("get sale %s: %w", saleID, err)
	}
	return fromRecord(rec), nil
}

func (j *GormJournal) ListByCashier(ctx context.Context, cashierID int64, limit int) ([]models.CompletedSale, error) {
	var recs []dbmodels.SaleRecord
	err := j.db.WithContext(ctx).
		Preload("Lines").
		Where("cashier_id = ?", cashierID).
		Order("sold_at DESC").
		Limit(clampLimit(limit)).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list sales for cashier %d: %w", cashierID, err)
	}

	out := make([]models.CompletedSale, len(recs))
	for i, r := range recs {
		out[i] = fromRecord(r)
	}
	return out, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toRecord(sale models.CompletedSale) dbmodels.SaleRecord {
	soldAt := sale.CreatedAt
	if soldAt.IsZero() {
		soldAt = time.Now()
	}

	rec := dbmodels.SaleRecord{
		SaleID:        sale.ID,
		CashierID:     sale.CashierID,
		PaymentMethod: int32(sale.PaymentMethod),
		Status:        sale.Status,
		Subtotal:      money.Format(sale.Subtotal),
		Tax:           money.Format(sale.Tax),
		Discount:      money.Format(sale.Discount),
		Total:         money.Format(sale.Total),
		AmountPaid:    money.Format(sale.AmountPaid),
		Change:        money.Format(sale.Change),
		Reference:     optional(sale.Reference),
		CustomerPhone: optional(sale.CustomerPhone),
		SoldAt:        soldAt,
	}
	for _, it := range sale.Items {
		rec.Lines = append(rec.Lines, dbmodels.SaleRecordLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Unit:      string(it.Unit),
			Quantity:  int32(it.Quantity),
			UnitPrice: money.Format(it.UnitPrice),
			LineTotal: money.Format(it.LineTotal),
		})
	}
	return rec
}

func fromRecord(rec dbmodels.SaleRecord) models.CompletedSale {
	sale := models.CompletedSale{
		SaleSubmission: models.SaleSubmission{
			Subtotal:      money.Parse(rec.Subtotal),
			Tax:           money.Parse(rec.Tax),
			Discount:      money.Parse(rec.Discount),
			Total:         money.Parse(rec.Total),
			PaymentMethod: models.PaymentMethod(rec.PaymentMethod),
			AmountPaid:    money.Parse(rec.AmountPaid),
			Change:        money.Parse(rec.Change),
			Reference:     deref(rec.Reference),
			CustomerPhone: deref(rec.CustomerPhone),
		},
		ID:        rec.SaleID,
		CashierID: rec.CashierID,
		CreatedAt: rec.SoldAt,
		Status:    rec.Status,
	}
	for _, l := range rec.Lines {
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Unit:      models.Unit(l.Unit),
			Quantity:  int(l.Quantity),
			UnitPrice: money.Parse(l.UnitPrice),
			LineTotal: money.Parse(l.LineTotal),
		})
	}
	return sale
}
