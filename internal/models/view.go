package models

// Direction of the last change, used as a CSS class.
type Direction string

const (
	DirectionNone Direction = ""
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ErrorSource identifies which fetch produced the text in the error slot.
type ErrorSource string

const (
	ErrorSourceNone    ErrorSource = ""
	ErrorSourceCompany ErrorSource = "company"
	ErrorSourceQuote   ErrorSource = "quote"
)

// WidgetView is the rendered state of a widget's surface, one field per
// named region.
type WidgetView struct {
	CompanyName      string      `json:"companyName"`
	Symbol           string      `json:"symbol"`
	SymbolClickable  bool        `json:"symbolClickable"`
	Price            string      `json:"price"`
	Loading          bool        `json:"loading"`
	Change           string      `json:"change"`
	Direction        Direction   `json:"direction,omitempty"`
	Timestamp        string      `json:"timestamp"`
	SpinnerError     bool        `json:"spinnerError"`
	Error            string      `json:"error,omitempty"`
	ErrorSource      ErrorSource `json:"errorSource,omitempty"`
	Sparkline        string      `json:"sparkline,omitempty"`
	SparklineHasData bool        `json:"sparklineHasData"`
}
