package models

// FetchRequest is owned by one widget. Symbol and APIKey are fixed at attach;
// CompanyURL is filled in once the company overview arrives.
type FetchRequest struct {
	Symbol     string
	APIKey     string
	CompanyURL string
}

// Quote holds display-ready values: numbers are fixed two-decimal strings.
type Quote struct {
	Symbol        string `json:"symbol"`
	Price         string `json:"price"`
	Change        string `json:"change"`
	ChangePercent string `json:"changePercent"`
	LastUpdate    string `json:"lastUpdate"`
}

// PriceSeries is ordered oldest first.
type PriceSeries []float64

// First and Last return zero for an empty series.
func (p PriceSeries) First() float64 {
	if len(p) == 0 {
		return 0
	}
	return p[0]
}

func (p PriceSeries) Last() float64 {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1]
}

type CompanyInfo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
