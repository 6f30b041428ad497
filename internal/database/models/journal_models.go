package models

import "time"

// SaleRecord is one confirmed sale as the remote API acknowledged it. Money
// columns keep the fixed two-decimal strings used on the wire.
type SaleRecord struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	SaleID        string `gorm:"type:varchar(64);uniqueIndex;not null"`
	CashierID     int64  `gorm:"index;not null"`
	PaymentMethod int32  `gorm:"not null"`
	Status        string `gorm:"type:varchar(32)"`

	Subtotal   string `gorm:"type:varchar(32);not null"`
	Tax        string `gorm:"type:varchar(32);not null"`
	Discount   string `gorm:"type:varchar(32);not null"`
	Total      string `gorm:"type:varchar(32);not null"`
	AmountPaid string `gorm:"type:varchar(32);not null"`
	Change     string `gorm:"type:varchar(32);not null"`

	Reference     *string `gorm:"type:varchar(128)"`
	CustomerPhone *string `gorm:"type:varchar(32)"`

	SoldAt    time.Time `gorm:"index;not null"`
	CreatedAt time.Time

	Lines []SaleRecordLine `gorm:"foreignKey:SaleRecordID"`
}

type SaleRecordLine struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	SaleRecordID int64  `gorm:"index;not null"`
	ProductID    int64  `gorm:"not null"`
	Name         string `gorm:"type:varchar(128);not null"`
	Unit         string `gorm:"type:varchar(8);not null"`
	Quantity     int32  `gorm:"not null"`
	UnitPrice    string `gorm:"type:varchar(32);not null"`
	LineTotal    string `gorm:"type:varchar(32);not null"`
}
