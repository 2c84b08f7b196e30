package analytics

import (
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/hakichain/haki-analytics/internal/constants"
	"github.com/hakichain/haki-analytics/internal/shared"
)

// maxDateMillis is the largest instant a browser Date can hold (±8.64e15 ms).
const maxDateMillis = 8_640_000_000_000_000

var nanosPerMilli = big.NewInt(1_000_000)

// Formatter renders timestamps as dates in Location using Layout.
type Formatter struct {
	Location *time.Location
	Layout   string
}

func DefaultFormatter() Formatter {
	return Formatter{Location: time.Local, Layout: constants.DateLayout}
}

func (f Formatter) format(t time.Time) string {
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	layout := f.Layout
	if layout == "" {
		layout = constants.DateLayout
	}
	return t.In(loc).Format(layout)
}

// ChainTimestamp formats an on-chain timestamp given in unix seconds.
func (f Formatter) ChainTimestamp(sec int64) string {
	if sec > maxDateMillis/1000 || sec < -maxDateMillis/1000 {
		return constants.DateInvalid
	}
	return f.format(time.UnixMilli(sec * 1000))
}

// RegisteredAt formats a registry timestamp given as decimal nanoseconds.
// "" and "None" render as "N/A", anything unparsable as "Invalid Date Format".
func (f Formatter) RegisteredAt(nanos string) string {
	nanos = strings.TrimSpace(nanos)
	if nanos == "" || nanos == constants.RegistryNoneValue {
		return constants.DateNotAvailable
	}
	t, err := ParseRegisteredAt(nanos)
	if err != nil {
		return constants.DateInvalid
	}
	return f.format(t)
}

// ParseRegisteredAt converts a decimal nanosecond string to a time with millisecond
// precision. Failures are marked shared.ErrParseFailure.
func ParseRegisteredAt(nanos string) (time.Time, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(nanos), 10)
	if !ok {
		return time.Time{}, errors.Mark(errors.Newf("registeredAt %q is not a decimal integer", nanos), shared.ErrParseFailure)
	}

	millis := new(big.Int).Quo(n, nanosPerMilli)
	if !millis.IsInt64() || millis.Int64() > maxDateMillis || millis.Int64() < -maxDateMillis {
		return time.Time{}, errors.Mark(errors.Newf("registeredAt %q out of range", nanos), shared.ErrParseFailure)
	}
	return time.UnixMilli(millis.Int64()), nil
}

// Initial is the avatar letter for an asset title.
func Initial(title string) string {
	r, size := utf8.DecodeRuneInString(title)
	if size == 0 {
		return constants.DefaultInitial
	}
	return strings.ToUpper(string(r))
}
