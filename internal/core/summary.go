package core

// Analytics projections computed by the backend and displayed verbatim.
type (
	// TopRiskyAccount is the dashboard projection of an account.
	TopRiskyAccount struct {
		ID        int64   `json:"id"`
		Name      string  `json:"name"`
		RiskScore float64 `json:"riskScore"`
	}

	MonthlySummary struct {
		Month string  `json:"month"`
		Type  string  `json:"type"`
		Total float64 `json:"total"`
	}

	CategorySummary struct {
		Category string  `json:"category"`
		Type     string  `json:"type"`
		Total    float64 `json:"total"`
	}
)
