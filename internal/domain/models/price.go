package models

import "time"

// Candle is one daily OHLCV bar.
type Candle struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceIndicators is a candle with moving averages of the close. SMA values are NaN
// until the window has filled.
type PriceIndicators struct {
	Candle
	SMA10 float64
	SMA20 float64
	EMA10 float64
	EMA20 float64
}
