package service

import (
	"fmt"

	"github.com/wikimedia/wmcs-edits/internal/dblist"
	"github.com/wikimedia/wmcs-edits/internal/domain"
)

// Partitioner maps a wiki to its database section.
type Partitioner interface {
	PartitionFor(dbname string) (string, error)
}

// Inventory lists the open wikis, sorted, with the section serving each.
func Inventory(sets dblist.SetResolver, partitioner Partitioner) ([]domain.WikiSection, error) {
	wikis, err := dblist.OpenWikis(sets)
	if err != nil {
		return nil, fmt.Errorf("listing open wikis: %w", err)
	}

	out := make([]domain.WikiSection, 0, wikis.Len())
	for _, dbname := range wikis.Sorted() {
		section, err := partitioner.PartitionFor(dbname)
		if err != nil {
			return nil, fmt.Errorf("routing %s: %w", dbname, err)
		}
		out = append(out, domain.WikiSection{DBName: dbname, Section: section})
	}
	return out, nil
}
