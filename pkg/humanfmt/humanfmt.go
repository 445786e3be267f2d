// Package humanfmt formats sizes, counts, durations and rates for log
// companion fields and command output.
package humanfmt

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Binary (IEC) units for bytes.
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
	TiB = 1024 * GiB
)

type unit struct {
	size   float64
	suffix string
}

// Largest first.
var (
	iecUnits   = []unit{{TiB, "TiB"}, {GiB, "GiB"}, {MiB, "MiB"}, {KiB, "KiB"}}
	duUnits    = []unit{{TiB, "T"}, {GiB, "G"}, {MiB, "M"}, {KiB, "K"}}
	countUnits = []unit{{1e9, "B"}, {1e6, "M"}, {1e3, "K"}}
)

// pick returns the largest unit not exceeding v, or false if v is below all.
func pick(v float64, units []unit) (unit, bool) {
	for _, u := range units {
		if v >= u.size {
			return u, true
		}
	}
	return unit{}, false
}

// Bytes formats a byte count in IEC units, e.g. "1.23 GiB" or "512 B".
func Bytes(b int64) string {
	if u, ok := pick(float64(b), iecUnits); ok {
		return fmt.Sprintf("%.2f %s", float64(b)/u.size, u.suffix)
	}
	return strconv.FormatInt(b, 10) + " B"
}

// Throughput formats bytes over d as a rate, e.g. "123.45 MiB/s".
func Throughput(bytes int64, d time.Duration) string {
	if d <= 0 {
		return "∞"
	}
	bps := float64(bytes) / d.Seconds()
	if u, ok := pick(bps, iecUnits); ok {
		return fmt.Sprintf("%.2f %s/s", bps/u.size, u.suffix)
	}
	return fmt.Sprintf("%.0f B/s", bps)
}

// Count formats an item count with K, M or B suffixes, e.g. "1.50M".
func Count(n int64) string {
	if u, ok := pick(float64(n), countUnits); ok {
		return fmt.Sprintf("%.2f%s", float64(n)/u.size, u.suffix)
	}
	return strconv.FormatInt(n, 10)
}

// Duration formats d compactly: "2h15m", "1m30s", "1.23s", "45.6ms",
// "789.0µs" or "12ns".
func Duration(d time.Duration) string {
	switch {
	case d < 0:
		return d.String()
	case d >= time.Hour:
		return wholeUnits(int64(d/time.Hour), "h", int64(d%time.Hour/time.Minute), "m")
	case d >= time.Minute:
		return wholeUnits(int64(d/time.Minute), "m", int64(d%time.Minute/time.Second), "s")
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d)/float64(time.Millisecond))
	case d >= time.Microsecond:
		return fmt.Sprintf("%.1fµs", float64(d)/float64(time.Microsecond))
	default:
		return strconv.FormatInt(d.Nanoseconds(), 10) + "ns"
	}
}

// wholeUnits renders "<major><a>" or "<major><a><minor><b>" when minor is set.
func wholeUnits(major int64, a string, minor int64, b string) string {
	if minor == 0 {
		return strconv.FormatInt(major, 10) + a
	}
	return fmt.Sprintf("%d%s%d%s", major, a, minor, b)
}

// DuSize formats a count of 512-byte blocks the way du -h does: a single
// letter suffix (B, K, M, G, T), with one decimal unless the value is
// integral. Examples: "512B", "4K", "1.5M".
func DuSize(blocks int64) string {
	b := blocks * 512
	u, ok := pick(float64(b), duUnits)
	if !ok {
		return strconv.FormatInt(b, 10) + "B"
	}
	v := float64(b) / u.size
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10) + u.suffix
	}
	return fmt.Sprintf("%.1f%s", v, u.suffix)
}
