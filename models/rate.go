package models

// RateQuote is the standardized charge breakdown returned by a rate lookup.
// Quotes are ephemeral; they are never persisted beyond the current session.
type RateQuote struct {
	Freight     float64 `json:"freight"`
	GST         float64 `json:"gst"`
	TotalAmount float64 `json:"totalAmount"`
	WeightUsed  float64 `json:"weightUsed"`
}
