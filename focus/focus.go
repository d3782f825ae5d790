// Package focus checks keyboard tab order.
//
// A Validator walks an ordered list of entries, each naming a control and
// the cumulative number of TAB presses after which it should hold focus.
// Only the difference from the previous entry is sent, so a list of counts
// 1, 2, 3 presses TAB once per entry.
package focus

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/padaiyal/harmony-e2e/driver"
	"github.com/padaiyal/harmony-e2e/locator"
	"github.com/padaiyal/harmony-e2e/report"
	"github.com/padaiyal/harmony-e2e/session"
)

// DefaultKeySettle is the pause after each TAB, long enough for focus
// styles and focus-triggered rendering to apply.
const DefaultKeySettle = 100 * time.Millisecond

var ErrTabOrder = errors.New("invalid tab order")

type Entry struct {
	Locator  locator.Locator
	Label    string
	TabCount int
}

// Record is the outcome for one entry.
type Record struct {
	Entry
	Focused bool
	// Err is set when the control could not be resolved or queried.
	Err error
}

func (r Record) Passed() bool { return r.Focused && r.Err == nil }

type Result struct {
	Records []Record
	// Tabs is the number of TAB presses sent.
	Tabs int
}

// OK reports whether every entry held focus at its count.
func (r Result) OK() bool {
	for _, rec := range r.Records {
		if !rec.Passed() {
			return false
		}
	}
	return len(r.Records) > 0
}

func (r Result) Failed() []Record {
	var out []Record
	for _, rec := range r.Records {
		if !rec.Passed() {
			out = append(out, rec)
		}
	}
	return out
}

// Diff renders expected against observed focus as a unified diff. Entries
// that did not hold focus appear on the observed side marked with their
// failure.
func (r Result) Diff() string {
	expected := make([]string, 0, len(r.Records))
	observed := make([]string, 0, len(r.Records))
	for _, rec := range r.Records {
		line := fmt.Sprintf("%d %s", rec.TabCount, rec.Label)
		expected = append(expected, line)
		switch {
		case rec.Err != nil:
			observed = append(observed, line+" (unresolved)")
		case !rec.Focused:
			observed = append(observed, line+" (not focused)")
		default:
			observed = append(observed, line)
		}
	}
	diff, _ := report.UnifiedDiff("expected", expected, "observed", observed)
	return diff
}

// JSON renders the result for machines.
func (r Result) JSON() (string, error) {
	doc := report.NewDoc().
		Set("passed", r.OK()).
		Set("tabs", r.Tabs).
		Set("entries", []any{})
	for _, rec := range r.Records {
		entry := map[string]any{
			"label":     rec.Label,
			"locator":   rec.Locator.String(),
			"tab_count": rec.TabCount,
			"focused":   rec.Focused,
		}
		if rec.Err != nil {
			entry["error"] = rec.Err.Error()
		}
		doc.Append("entries", entry)
	}
	return doc.JSON()
}

type Validator struct {
	s         *session.Session
	keySettle time.Duration
	timeout   time.Duration
	log       *zap.Logger
}

type Option func(*Validator)

func WithKeySettle(d time.Duration) Option {
	return func(v *Validator) { v.keySettle = d }
}

// WithTimeout bounds how long each control is waited for after tabbing.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) { v.timeout = d }
}

func WithLogger(log *zap.Logger) Option {
	return func(v *Validator) {
		if log != nil {
			v.log = log
		}
	}
}

func New(s *session.Session, opts ...Option) *Validator {
	v := &Validator{
		s:         s,
		keySettle: DefaultKeySettle,
		timeout:   s.Timeout(),
		log:       s.Logger().Named("focus"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Check rejects lists whose counts are negative or not strictly increasing.
func Check(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no entries", ErrTabOrder)
	}
	prev := -1
	for i, e := range entries {
		if e.Locator.IsZero() {
			return fmt.Errorf("%w: entry %d (%s) has no locator", ErrTabOrder, i, e.Label)
		}
		if e.TabCount <= prev {
			return fmt.Errorf("%w: entry %d (%s) has tab count %d after %d", ErrTabOrder, i, e.Label, e.TabCount, prev)
		}
		prev = e.TabCount
	}
	return nil
}

// Validate tabs through entries starting from the current focus. Every entry
// is checked; a control that is missing or not focused is recorded and the
// walk continues. Only a failure to send a key stops it early.
func (v *Validator) Validate(entries []Entry) (Result, error) {
	var res Result
	if err := Check(entries); err != nil {
		return res, err
	}

	for _, e := range entries {
		for delta := e.TabCount - res.Tabs; delta > 0; delta-- {
			if err := v.s.PressKey(driver.Tab); err != nil {
				return res, fmt.Errorf("tabbing to %s: %w", e.Label, err)
			}
			res.Tabs++
			v.s.SettleFor(v.keySettle)
		}

		rec := Record{Entry: e}
		h, err := v.s.Find(e.Locator, v.timeout)
		if err == nil {
			rec.Focused, err = h.IsFocused()
		}
		rec.Err = err
		res.Records = append(res.Records, rec)

		fields := []zap.Field{
			zap.String("label", e.Label),
			zap.Stringer("locator", e.Locator),
			zap.Int("tab_count", e.TabCount),
		}
		switch {
		case rec.Err != nil:
			v.log.Warn("focus target unresolved", append(fields, zap.Error(rec.Err))...)
		case !rec.Focused:
			v.log.Warn("focus mismatch", fields...)
		default:
			v.log.Debug("focus ok", fields...)
		}
	}
	return res, nil
}
