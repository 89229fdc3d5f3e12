package domain

import "sort"

// WikiEditStats holds the edit counters for one wiki database.
type WikiEditStats struct {
	DBName   string `json:"dbname"`
	Total    int64  `json:"total"`
	Internal int64  `json:"internal"`
}

// Report is the collected result of a run.
type Report struct {
	Window  Window
	Stats   map[string]*WikiEditStats
	Skipped []string
}

// NewReport creates an empty report for a window.
func NewReport(w Window) *Report {
	return &Report{
		Window: w,
		Stats:  make(map[string]*WikiEditStats),
	}
}

// Add records the stats for a wiki, replacing any previous entry.
func (r *Report) Add(s *WikiEditStats) {
	r.Stats[s.DBName] = s
}

// Skip records a wiki that could not be counted.
func (r *Report) Skip(dbname string) {
	r.Skipped = append(r.Skipped, dbname)
}

// Sorted returns the collected stats ordered by dbname.
func (r *Report) Sorted() []*WikiEditStats {
	out := make([]*WikiEditStats, 0, len(r.Stats))
	for _, s := range r.Stats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DBName < out[j].DBName
	})
	return out
}

// Totals sums the counters of every reported wiki.
func (r *Report) Totals() (total, internal int64) {
	for _, s := range r.Stats {
		total += s.Total
		internal += s.Internal
	}
	return total, internal
}

// WikiSection pairs a wiki with the database section serving it.
type WikiSection struct {
	DBName  string `json:"dbname"`
	Section string `json:"section"`
}
