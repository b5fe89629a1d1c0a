package ui

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	dateLayout = "January 2, 2006"
	timeLayout = "03:04 PM"
)

// FormatDate renders an ISO-8601 timestamp as e.g. "March 5, 2024" in loc
// (local time when nil). Unparseable input gives an empty string.
func FormatDate(iso string, loc *time.Location) string {
	t, ok := parseISO(iso, loc)
	if !ok {
		return ""
	}
	return t.Format(dateLayout)
}

// FormatTime renders an ISO-8601 timestamp as e.g. "09:05 AM" in loc
func FormatTime(iso string, loc *time.Location) string {
	t, ok := parseISO(iso, loc)
	if !ok {
		return ""
	}
	return t.Format(timeLayout)
}

func parseISO(iso string, loc *time.Location) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc), true
}

// TimeFunction wraps fn so each call logs how long it took
func TimeFunction(log logrus.FieldLogger, name string, fn func() error) func() error {
	return func() error {
		start := time.Now()
		err := fn()
		elapsed := time.Since(start).Milliseconds()
		log.WithField("elapsed_ms", elapsed).Debugf("%s executed in %dms", name, elapsed)
		return err
	}
}
