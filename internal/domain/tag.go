package domain

// Tag is read-mostly: rows are upserted by the market-data ingestion job
// (coin id, name, symbol come from the feed) and consumed by the question
// repository as a foreign-key target.
type Tag struct {
	ID            string `gorm:"size:128;primaryKey" json:"id"`
	Name          string `gorm:"size:255;not null" json:"name"`
	Symbol        string `gorm:"size:64;not null" json:"symbol"`
	Image         string `gorm:"size:512" json:"image,omitempty"`
	MarketCapRank int    `gorm:"default:-1" json:"market_cap_rank,omitempty"`
}
