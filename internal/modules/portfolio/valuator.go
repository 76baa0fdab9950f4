package portfolio

import (
	"time"

	"github.com/mhalkiad/compass/internal/domain"
)

// Revalue prices holdings against the quote map and recomputes the derived
// fields in two passes: first per-holding values, then allocations against
// the finished total. Holdings without a quote keep their last known price;
// they are still revalued and included in the total.
func Revalue(holdings []domain.Holding, quotes map[string]domain.Quote, now time.Time) []domain.Holding {
	out := make([]domain.Holding, len(holdings))
	copy(out, holdings)

	var total float64
	for i := range out {
		h := &out[i]
		if q, ok := quotes[h.Symbol]; ok {
			// day change is measured against the holding's last stored
			// price, not the quote's previous close
			prevValue := h.Shares * h.CurrentPrice
			newValue := h.Shares * q.Price
			h.DayChange = domain.Round(newValue-prevValue, 2)
			if prevValue > 0 {
				h.DayChangePercent = domain.Round(h.DayChange/prevValue*100, 2)
			} else {
				h.DayChangePercent = 0
			}
			h.CurrentPrice = q.Price
			if q.Name != "" {
				h.Name = q.Name
			}
			h.LastUpdated = now
		}
		h.TotalValue = domain.Round(h.Shares*h.CurrentPrice, 2)
		h.TotalGainLoss = domain.Round(h.TotalValue-h.Shares*h.AvgCost, 2)
		if h.Shares*h.AvgCost > 0 {
			h.TotalGainLossPercent = domain.Round(h.TotalGainLoss/(h.Shares*h.AvgCost)*100, 2)
		}
		total += h.TotalValue
	}

	for i := range out {
		if total > 0 {
			out[i].Allocation = domain.Round(out[i].TotalValue/total*100, 2)
		} else {
			out[i].Allocation = 0
		}
	}
	return out
}

// TotalValue sums the current value of the holdings, pricing each from the
// quote map when a live quote exists and the stored price otherwise.
func TotalValue(holdings []domain.Holding, quotes map[string]domain.Quote) float64 {
	var total float64
	for _, h := range holdings {
		price := h.CurrentPrice
		if q, ok := quotes[h.Symbol]; ok {
			price = q.Price
		}
		total += h.Shares * price
	}
	return domain.Round(total, 2)
}

// TotalGains sums unrealized gains across the holdings.
func TotalGains(holdings []domain.Holding, quotes map[string]domain.Quote) float64 {
	var gains float64
	for _, h := range holdings {
		price := h.CurrentPrice
		if q, ok := quotes[h.Symbol]; ok {
			price = q.Price
		}
		gains += h.Shares * (price - h.AvgCost)
	}
	return domain.Round(gains, 2)
}
