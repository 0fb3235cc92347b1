package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord summarizes one completed simulation run.
type RunRecord struct {
	VersionedRecord
	ID                string  `json:"id"`
	CreatedAtUTC      string  `json:"created_at_utc"`
	Seed              int64   `json:"seed"`
	PopulationSize    int     `json:"population_size"`
	Generations       int     `json:"generations"`
	MaxSteps          int     `json:"max_steps"`
	TargetPeptide     string  `json:"target_peptide,omitempty"`
	Extinct           bool    `json:"extinct,omitempty"`
	BestCode          string  `json:"best_code"`
	BestProgeny       string  `json:"best_progeny,omitempty"`
	BestPeptide       string  `json:"best_peptide,omitempty"`
	BestFitness       float64 `json:"best_fitness"`
	CumulativeEntropy float64 `json:"cumulative_entropy"`
}

// GenerationDiagnostics captures per-generation population metrics.
type GenerationDiagnostics struct {
	Generation        int     `json:"generation"`
	BestFitness       float64 `json:"best_fitness"`
	MeanFitness       float64 `json:"mean_fitness"`
	MinFitness        float64 `json:"min_fitness"`
	CumulativeEntropy float64 `json:"cumulative_entropy"`
	Survivors         int     `json:"survivors"`
}

// LineageRecord tracks which parent and mutation operator produced an
// agent's code.
type LineageRecord struct {
	AgentID    string `json:"agent_id"`
	ParentID   string `json:"parent_id"`
	Generation int    `json:"generation"`
	Operation  string `json:"operation"`
	Code       string `json:"code,omitempty"`
}
