// Package report renders collected edit counts as CSV.
package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/wikimedia/wmcs-edits/internal/domain"
)

// TotalLabel names the grand total row.
const TotalLabel = "TOTAL"

// Write prints one dbname,total,internal row per reported wiki in dbname
// order, then the TOTAL row. There is no header.
func Write(w io.Writer, rep *domain.Report) error {
	cw := csv.NewWriter(w)

	var total, internal int64
	for _, s := range rep.Sorted() {
		total += s.Total
		internal += s.Internal
		if err := cw.Write(row(s.DBName, s.Total, s.Internal)); err != nil {
			return err
		}
	}
	if err := cw.Write(row(TotalLabel, total, internal)); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// WriteSections prints one dbname,section row per wiki.
func WriteSections(w io.Writer, sections []domain.WikiSection) error {
	cw := csv.NewWriter(w)
	for _, s := range sections {
		if err := cw.Write([]string{s.DBName, s.Section}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(label string, total, internal int64) []string {
	return []string{
		label,
		strconv.FormatInt(total, 10),
		strconv.FormatInt(internal, 10),
	}
}
