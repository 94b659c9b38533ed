package quote

import "time"

// TimestampLayout is the civil datetime format written to the record.
const TimestampLayout = "2006-01-02 15:04:05"

// Bangkok is Asia/Bangkok as a fixed UTC+7 zone. Thailand has no DST, so this
// avoids depending on tzdata being installed on CI runners.
var Bangkok = time.FixedZone("Asia/Bangkok", 7*60*60)

// Record is the persisted quote. Field order drives JSON key order.
type Record struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percent_change"`
	Timestamp     string  `json:"timestamp"`
}

// BuildRecord stamps normalized fields with the current Bangkok time.
func BuildRecord(f Fields, now func() time.Time) Record {
	if now == nil {
		now = time.Now
	}
	return Record{
		Symbol:        f.Symbol,
		Price:         f.Price,
		Change:        f.Change,
		PercentChange: f.PercentChange,
		Timestamp:     now().In(Bangkok).Format(TimestampLayout),
	}
}
