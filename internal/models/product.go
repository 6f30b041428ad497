package models

type Unit string

const (
	UnitBag Unit = "bag"
	UnitKg  Unit = "kg"
)

func (u Unit) Valid() bool {
	return u == UnitBag || u == UnitKg
}

// Product is a catalog record owned by the remote API. Money fields stay as
// the decimal strings the API sends; callers parse them with the money package.
type Product struct {
	ID            int64   `json:"product_id"`
	Name          string  `json:"name"`
	Price         string  `json:"price"`
	CostPrice     string  `json:"cost_price"`
	StockQuantity int     `json:"stock_quantity"`
	UnitType      Unit    `json:"unit_type"`
	WeightPerBag  *int    `json:"weight_per_bag,omitempty"`
	ReorderLevel  *int    `json:"reorder_level,omitempty"`
	ExpiryDate    *string `json:"expiry_date,omitempty"`
}
