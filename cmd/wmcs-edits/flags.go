package main

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/wikimedia/wmcs-edits/internal/domain"
	"github.com/wikimedia/wmcs-edits/internal/validation"
)

// dateValue is a YYYY-MM-DD flag. Malformed dates fail during flag parsing.
type dateValue struct {
	name string
	t    time.Time
}

var _ pflag.Value = (*dateValue)(nil)

func (d *dateValue) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(domain.DateLayout)
}

func (d *dateValue) Set(s string) error {
	t, err := validation.ParseDate(d.name, s)
	if err != nil {
		return err
	}
	d.t = t
	return nil
}

func (d *dateValue) Type() string {
	return "YYYY-MM-DD"
}
