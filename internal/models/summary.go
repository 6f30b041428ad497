package models

// TenderTotal is the expected takings for one payment method over a day.
type TenderTotal struct {
	Method   PaymentMethod `json:"payment_method"`
	Expected string        `json:"expected_amount"`
	Count    int           `json:"transaction_count"`
}

// DailySummary is the remote API's aggregate for a single business day.
type DailySummary struct {
	Date    string        `json:"date"`
	Tenders []TenderTotal `json:"tenders"`
}

func (s DailySummary) Expected(m PaymentMethod) string {
	for _, t := range s.Tenders {
		if t.Method == m {
			return t.Expected
		}
	}
	return ""
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
