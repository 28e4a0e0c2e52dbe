package casedoc

import "time"

// Progress is a point-in-time snapshot of an extraction run.
type Progress struct {
	Percent       float64       `json:"percent"`
	Extracted     int           `json:"extracted"`
	Failed        int           `json:"failed"`
	Total         int           `json:"total"`
	DocsPerMinute float64       `json:"docsPerMinute"`
	ETASeconds    float64       `json:"etaSeconds"`
	ActiveWorkers int           `json:"activeWorkers"`
	CurrentCase   string        `json:"currentCase"`
	CaseDone      int           `json:"caseDone"`
	CaseTotal     int           `json:"caseTotal"`
	Elapsed       time.Duration `json:"elapsed"`
}

// ProgressFunc receives progress snapshots.
type ProgressFunc func(Progress)
