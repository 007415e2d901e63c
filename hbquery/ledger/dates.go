package ledger

import (
	"strconv"
	"strings"
	"time"

	hqerrors "github.com/nonibytes/hbquery/hbquery/errors"
)

// DateLayout is how context dates are rendered (day/month/year).
const DateLayout = "02/01/2006"

// dateLayouts are tried in order by ParseDate; missing parts default to 1.
var dateLayouts = []string{"2/1/2006", "1/2006", "2006"}

const (
	secondsPerDay = 24 * 60 * 60
	// maxSerial is 9999-12-31.
	maxSerial = 3652059
)

// epochUnix is 0001-01-01T00:00:00Z, the day with ordinal 1.
var epochUnix = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()

// OrdinalToTime converts a day serial to a calendar date: ordinal n is the
// epoch plus n-1 days.
func OrdinalToTime(n int64) time.Time {
	return time.Unix(epochUnix+(n-1)*secondsPerDay, 0).UTC()
}

// TimeToOrdinal is the inverse of OrdinalToTime.
func TimeToOrdinal(t time.Time) int64 {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return (day.Unix()-epochUnix)/secondsPerDay + 1
}

// FormatOrdinal renders a day serial with DateLayout.
func FormatOrdinal(n int64) string {
	return OrdinalToTime(n).Format(DateLayout)
}

// ParseDate parses day/month/year, month/year or year and returns the
// day ordinal. The first layout that matches wins.
func ParseDate(s string) (int64, error) {
	v := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return TimeToOrdinal(t), nil
		}
	}
	return 0, hqerrors.DateFormatError(s)
}

// parseSerial reads a raw day serial attribute.
func parseSerial(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 || n > maxSerial {
		return 0, false
	}
	return n, true
}
