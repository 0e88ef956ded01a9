package metapath

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

const (
	layoutDate     = "2006-01-02"
	layoutDateTime = "2006-01-02T15:04:05"
	layoutTime     = "15:04:05"
	layoutFraction = ".999999999"
)

// time values are anchored on this date when they need to be compared or
// subtracted.
var referenceDate = time.Date(1972, time.December, 31, 0, 0, 0, 0, time.UTC)

// temporal is implemented by the date, dateTime and time items. Values
// without an explicit timezone are stored with UTC and adopt the implicit
// timezone of the dynamic context when they are compared or used in
// arithmetic.
type temporal interface {
	Atomic
	instant(*time.Location) time.Time
	zoned() bool
}

type dateItem struct {
	value time.Time
	tz    bool
}

func NewDate(t time.Time, tz bool) Atomic {
	y, m, d := t.Date()
	return dateItem{
		value: time.Date(y, m, d, 0, 0, 0, 0, zoneOf(t, tz)),
		tz:    tz,
	}
}

func ParseDate(str string) (Atomic, error) {
	rest, loc, tz, err := parseZone(strings.TrimSpace(str))
	if err != nil {
		return nil, castError(str, TypeDate)
	}
	t, err := time.ParseInLocation(layoutDate, rest, loc)
	if err != nil {
		return nil, castError(str, TypeDate)
	}
	return dateItem{value: t, tz: tz}, nil
}

func (_ dateItem) Type() *ItemType {
	return TypeDate
}

func (i dateItem) Value() any {
	return i.value
}

func (i dateItem) String() string {
	return i.value.Format(layoutDate) + zoneSuffix(i.value, i.tz)
}

func (i dateItem) key() atomicKey {
	return temporalKey("date", i.value, i.tz)
}

func (i dateItem) instant(zone *time.Location) time.Time {
	return instantOf(i.value, i.tz, zone)
}

func (i dateItem) zoned() bool {
	return i.tz
}

type dateTimeItem struct {
	value time.Time
	tz    bool
}

func NewDateTime(t time.Time, tz bool) Atomic {
	if !tz {
		t = inZone(t, time.UTC)
	}
	return dateTimeItem{value: t, tz: tz}
}

func ParseDateTime(str string) (Atomic, error) {
	rest, loc, tz, err := parseZone(strings.TrimSpace(str))
	if err != nil {
		return nil, castError(str, TypeDateTime)
	}
	t, err := time.ParseInLocation(layoutDateTime, rest, loc)
	if err != nil {
		return nil, castError(str, TypeDateTime)
	}
	return dateTimeItem{value: t, tz: tz}, nil
}

func (_ dateTimeItem) Type() *ItemType {
	return TypeDateTime
}

func (i dateTimeItem) Value() any {
	return i.value
}

func (i dateTimeItem) String() string {
	return i.value.Format(layoutDateTime+layoutFraction) + zoneSuffix(i.value, i.tz)
}

func (i dateTimeItem) key() atomicKey {
	return temporalKey("dateTime", i.value, i.tz)
}

func (i dateTimeItem) instant(zone *time.Location) time.Time {
	return instantOf(i.value, i.tz, zone)
}

func (i dateTimeItem) zoned() bool {
	return i.tz
}

type timeItem struct {
	value time.Time
	tz    bool
}

func NewTime(t time.Time, tz bool) Atomic {
	return timeItem{
		value: onReferenceDate(t, zoneOf(t, tz)),
		tz:    tz,
	}
}

func ParseTime(str string) (Atomic, error) {
	rest, loc, tz, err := parseZone(strings.TrimSpace(str))
	if err != nil {
		return nil, castError(str, TypeTime)
	}
	t, err := time.ParseInLocation(layoutTime, rest, loc)
	if err != nil {
		return nil, castError(str, TypeTime)
	}
	return timeItem{value: onReferenceDate(t, loc), tz: tz}, nil
}

func (_ timeItem) Type() *ItemType {
	return TypeTime
}

func (i timeItem) Value() any {
	return i.value
}

func (i timeItem) String() string {
	return i.value.Format(layoutTime+layoutFraction) + zoneSuffix(i.value, i.tz)
}

func (i timeItem) key() atomicKey {
	return temporalKey("time", i.value, i.tz)
}

func (i timeItem) instant(zone *time.Location) time.Time {
	return instantOf(i.value, i.tz, zone)
}

func (i timeItem) zoned() bool {
	return i.tz
}

func zoneOf(t time.Time, tz bool) *time.Location {
	if !tz {
		return time.UTC
	}
	return t.Location()
}

func onReferenceDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := referenceDate.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// inZone keeps the wall clock of t and moves it in the given location.
func inZone(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

func instantOf(t time.Time, tz bool, zone *time.Location) time.Time {
	if tz || zone == nil {
		return t
	}
	return inZone(t, zone)
}

func temporalKey(class string, t time.Time, tz bool) atomicKey {
	if tz {
		return atomicKey{class: class, value: t.UTC().Format(time.RFC3339Nano)}
	}
	return atomicKey{class: class + "-local", value: t.Format(time.RFC3339Nano)}
}

func zoneSuffix(t time.Time, tz bool) string {
	if !tz {
		return ""
	}
	_, offset := t.Zone()
	if offset == 0 {
		return "Z"
	}
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	return fmt.Sprintf("%c%02d:%02d", sign, offset/3600, (offset%3600)/60)
}

func formatZone(loc *time.Location) string {
	_, offset := time.Date(2000, 1, 1, 0, 0, 0, 0, loc).Zone()
	return zoneSuffix(time.Date(2000, 1, 1, 0, 0, 0, 0, time.FixedZone("", offset)), true)
}

// parseZone splits a lexical date/time value from its optional timezone: Z or
// an offset of the form +hh:mm.
func parseZone(str string) (string, *time.Location, bool, error) {
	if rest, ok := strings.CutSuffix(str, "Z"); ok {
		return rest, time.UTC, true, nil
	}
	n := len(str)
	if n <= 6 || (str[n-6] != '+' && str[n-6] != '-') || str[n-3] != ':' {
		return str, time.UTC, false, nil
	}
	hours, err := strconv.Atoi(str[n-5 : n-3])
	if err != nil || hours > 14 {
		return "", nil, false, fmt.Errorf("%s: invalid timezone", str)
	}
	minutes, err := strconv.Atoi(str[n-2:])
	if err != nil || minutes > 59 {
		return "", nil, false, fmt.Errorf("%s: invalid timezone", str)
	}
	offset := hours*3600 + minutes*60
	if str[n-6] == '-' {
		offset = -offset
	}
	return str[:n-6], time.FixedZone("", offset), true, nil
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// addMonths moves t by the given number of months. The day is clamped to the
// last day of the target month.
func addMonths(t time.Time, months int64) time.Time {
	var (
		y, m, d = t.Date()
		total   = int64(y)*12 + int64(m-1) + months
		year    = total / 12
		month   = total % 12
	)
	if month < 0 {
		month += 12
		year--
	}
	mo := time.Month(month + 1)
	d = min(d, daysIn(mo, int(year)))
	return time.Date(int(year), mo, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

type dayTimeItem time.Duration

func NewDayTimeDuration(d time.Duration) Atomic {
	return dayTimeItem(d)
}

var dayTimePattern = regexp.MustCompile(`^(-)?P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:\.(\d+))?S)?)?$`)

func ParseDayTimeDuration(str string) (Atomic, error) {
	str = strings.TrimSpace(str)
	parts := dayTimePattern.FindStringSubmatch(str)
	if parts == nil || str == "P" || str == "-P" || strings.HasSuffix(str, "T") {
		return nil, castError(str, TypeDayTimeDuration)
	}
	var (
		total int64
		units = []time.Duration{24 * time.Hour, time.Hour, time.Minute, time.Second}
	)
	for i, u := range units {
		if parts[i+2] == "" {
			continue
		}
		n, err := strconv.ParseInt(parts[i+2], 10, 64)
		if err != nil {
			return nil, durationOverflow()
		}
		v, ok := mulExact(n, int64(u))
		if !ok {
			return nil, durationOverflow()
		}
		if total, ok = addExact(total, v); !ok {
			return nil, durationOverflow()
		}
	}
	if frac := parts[6]; frac != "" {
		frac = (frac + "000000000")[:9]
		n, _ := strconv.ParseInt(frac, 10, 64)
		var ok bool
		if total, ok = addExact(total, n); !ok {
			return nil, durationOverflow()
		}
	}
	if parts[1] != "" {
		total = -total
	}
	return dayTimeItem(total), nil
}

func (_ dayTimeItem) Type() *ItemType {
	return TypeDayTimeDuration
}

func (i dayTimeItem) Value() any {
	return time.Duration(i)
}

func (i dayTimeItem) String() string {
	if i == 0 {
		return "PT0S"
	}
	var (
		str   strings.Builder
		total = uint64(i)
	)
	if i < 0 {
		str.WriteByte('-')
		total = uint64(-(i + 1)) + 1
	}
	str.WriteByte('P')

	var (
		day    = uint64(24 * time.Hour)
		days   = total / day
		hours  = (total % day) / uint64(time.Hour)
		mins   = (total % uint64(time.Hour)) / uint64(time.Minute)
		secs   = (total % uint64(time.Minute)) / uint64(time.Second)
		nanos  = total % uint64(time.Second)
		clocks = hours > 0 || mins > 0 || secs > 0 || nanos > 0
	)
	if days > 0 {
		fmt.Fprintf(&str, "%dD", days)
	}
	if !clocks {
		return str.String()
	}
	str.WriteByte('T')
	if hours > 0 {
		fmt.Fprintf(&str, "%dH", hours)
	}
	if mins > 0 {
		fmt.Fprintf(&str, "%dM", mins)
	}
	if secs > 0 || nanos > 0 {
		fmt.Fprintf(&str, "%d", secs)
		if nanos > 0 {
			frac := strings.TrimRight(fmt.Sprintf("%09d", nanos), "0")
			str.WriteString("." + frac)
		}
		str.WriteByte('S')
	}
	return str.String()
}

func (i dayTimeItem) key() atomicKey {
	return atomicKey{class: "dayTime", value: strconv.FormatInt(int64(i), 10)}
}

type yearMonthItem int64

func NewYearMonthDuration(months int) Atomic {
	return yearMonthItem(months)
}

var yearMonthPattern = regexp.MustCompile(`^(-)?P(?:(\d+)Y)?(?:(\d+)M)?$`)

func ParseYearMonthDuration(str string) (Atomic, error) {
	str = strings.TrimSpace(str)
	parts := yearMonthPattern.FindStringSubmatch(str)
	if parts == nil || str == "P" || str == "-P" {
		return nil, castError(str, TypeYearMonthDuration)
	}
	var total int64
	if parts[2] != "" {
		years, err := strconv.ParseInt(parts[2], 10, 32)
		if err != nil {
			return nil, durationOverflow()
		}
		total = years * 12
	}
	if parts[3] != "" {
		months, err := strconv.ParseInt(parts[3], 10, 32)
		if err != nil {
			return nil, durationOverflow()
		}
		total += months
	}
	if parts[1] != "" {
		total = -total
	}
	return monthsOf(total)
}

func monthsOf(total int64) (Atomic, error) {
	if total > math.MaxInt32 || total < math.MinInt32 {
		return nil, durationOverflow()
	}
	return yearMonthItem(total), nil
}

func (_ yearMonthItem) Type() *ItemType {
	return TypeYearMonthDuration
}

func (i yearMonthItem) Value() any {
	return int64(i)
}

func (i yearMonthItem) String() string {
	if i == 0 {
		return "P0M"
	}
	var (
		str   strings.Builder
		total = int64(i)
	)
	if total < 0 {
		str.WriteByte('-')
		total = -total
	}
	str.WriteByte('P')
	if y := total / 12; y > 0 {
		fmt.Fprintf(&str, "%dY", y)
	}
	if m := total % 12; m > 0 {
		fmt.Fprintf(&str, "%dM", m)
	}
	return str.String()
}

func (i yearMonthItem) key() atomicKey {
	return atomicKey{class: "yearMonth", value: strconv.FormatInt(int64(i), 10)}
}

func addExact(a, b int64) (int64, bool) {
	c := a + b
	if (a > 0 && b > 0 && c < 0) || (a < 0 && b < 0 && c >= 0) {
		return 0, false
	}
	return c, true
}

func mulExact(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return c, true
}

func addDurations(a, b time.Duration) (Atomic, error) {
	d, ok := addExact(int64(a), int64(b))
	if !ok {
		return nil, durationOverflow()
	}
	return dayTimeItem(d), nil
}

func subtractDurations(a, b time.Duration) (Atomic, error) {
	if b == math.MinInt64 {
		return nil, durationOverflow()
	}
	return addDurations(a, -b)
}

// scaleDuration multiplies (or divides) an amount of a duration by a numeric
// factor. The result is rounded half up to the unit of the duration.
func scaleDuration(amount int64, factor *apd.Decimal, divide bool) (int64, error) {
	if divide && factor.IsZero() {
		return 0, divisionByZero()
	}
	var (
		res apd.Decimal
		err error
	)
	if divide {
		_, err = decimalContext.Quo(&res, apd.New(amount, 0), factor)
	} else {
		_, err = decimalContext.Mul(&res, apd.New(amount, 0), factor)
	}
	if err != nil {
		return 0, durationOverflow()
	}
	var half apd.Decimal
	if _, err := decimalContext.Add(&half, &res, apd.New(5, -1)); err != nil {
		return 0, durationOverflow()
	}
	var rounded apd.Decimal
	if _, err := decimalContext.Floor(&rounded, &half); err != nil {
		return 0, durationOverflow()
	}
	n, err := rounded.Int64()
	if err != nil {
		return 0, durationOverflow()
	}
	return n, nil
}

// subtractInstants returns the duration between two instants. time.Sub
// saturates instead of failing, so saturated results are reported as overflow.
func subtractInstants(a, b time.Time) (Atomic, error) {
	d := a.Sub(b)
	if d == math.MaxInt64 || d == math.MinInt64 {
		return nil, durationOverflow()
	}
	return dayTimeItem(d), nil
}
