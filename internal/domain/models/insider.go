package models

import "time"

// InsiderTransaction is one filed insider trade. Change is signed: positive shares bought.
type InsiderTransaction struct {
	Name            string
	Share           float64
	Change          float64
	FilingDate      time.Time
	TransactionDate time.Time
	TransactionCode string
	Price           float64
}

// InsiderScore is the net buy/sell balance of insiders over a window, in [-1, 1].
type InsiderScore struct {
	Symbol       string
	From         time.Time
	To           time.Time
	Score        float64
	BuyShares    float64
	SellShares   float64
	Transactions int
}

// InsiderSentiment is Finnhub's monthly share purchase ratio (MSPR).
type InsiderSentiment struct {
	Symbol string
	Year   int
	Month  int
	Change float64
	MSPR   float64
}
