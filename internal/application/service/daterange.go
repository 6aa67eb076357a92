package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sangkips/notas-backoffice/internal/domain/repository"
	"github.com/sangkips/notas-backoffice/pkg/apperror"
)

const dateLayout = "2006-01-02"

// Period is a raw start/end pair as received from a client. Each side is a
// calendar date (YYYY-MM-DD) or an RFC 3339 timestamp; either may be empty.
type Period struct {
	Start string
	End   string
}

// Resolve turns p into an inclusive range in loc. A bare start date begins at
// local midnight, a bare end date runs through the last nanosecond of that day.
func (p Period) Resolve(loc *time.Location) (repository.DateRange, error) {
	var r repository.DateRange

	if s := strings.TrimSpace(p.Start); s != "" {
		t, _, err := parseInstant(s, loc)
		if err != nil {
			return r, apperror.NewFieldError("start", "must be YYYY-MM-DD or RFC 3339")
		}
		r.Start = &t
	}
	if s := strings.TrimSpace(p.End); s != "" {
		t, dateOnly, err := parseInstant(s, loc)
		if err != nil {
			return r, apperror.NewFieldError("end", "must be YYYY-MM-DD or RFC 3339")
		}
		if dateOnly {
			t = endOfDay(t)
		}
		r.End = &t
	}

	if r.Start != nil && r.End != nil && r.End.Before(*r.Start) {
		return r, apperror.NewFieldError("end", "must not be before start")
	}
	return r, nil
}

// Key renders p for cache keys
func (p Period) Key() string {
	return strings.TrimSpace(p.Start) + "~" + strings.TrimSpace(p.End)
}

func parseInstant(s string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.In(loc), false, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// fetchDirect runs loader and copies its result into dest through JSON, the
// same path a cached payload takes.
func fetchDirect(ctx context.Context, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	v, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
