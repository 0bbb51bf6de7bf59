package entity

// HistoricalSeries is a daily rate series of Target expressed in Base.
// Dates and Rates are parallel slices sorted by date. Gaps lists the dates the
// upstream returned without both legs of the cross rate.
type HistoricalSeries struct {
	Base       string     `json:"base"`
	Target     string     `json:"target"`
	Dates      []string   `json:"dates"`
	Rates      []float64  `json:"rates"`
	Gaps       []string   `json:"gaps"`
	Provenance Provenance `json:"provenance"`
	Reason     Reason     `json:"reason"`
}

// Len returns the number of points in the series
func (h *HistoricalSeries) Len() int {
	return len(h.Dates)
}
