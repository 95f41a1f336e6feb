package model

// BillRecord is an extracted medical bill as handed to the pipeline by the
// document-extraction layer (or supplied directly by the caller). It is
// immutable once a pipeline run starts.
type BillRecord struct {
	Total         float64  `json:"total"`
	Provider      string   `json:"provider"`
	DateOfService string   `json:"date_of_service"`
	Services      []string `json:"services"`
}

// Normalized returns a copy with producer-contract defaults applied:
// negative totals become 0, absent provider/date become "Unknown", and a nil
// services slice becomes empty.
func (b BillRecord) Normalized() BillRecord {
	out := b
	if out.Total < 0 {
		out.Total = 0
	}
	if out.Provider == "" {
		out.Provider = "Unknown"
	}
	if out.DateOfService == "" {
		out.DateOfService = "Unknown"
	}
	if out.Services == nil {
		out.Services = []string{}
	}
	return out
}
