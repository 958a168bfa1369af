package indicators

import (
	"time"

	"github.com/fazecat/momentumwatch/Internal/types"
	"github.com/fazecat/momentumwatch/Internal/utils"
)

// ============================================================================
// SESSION INDICATORS
// ============================================================================
// Pure functions over a session's 1-minute bars, timestamp-ascending.
// Every function tolerates empty or short input and returns a neutral
// value instead of failing.

// VWAP computes the session volume weighted average price using typical
// price (high+low+close)/3. Returns 0 on empty input and the last close
// when total volume is zero.
func VWAP(bars []types.Bar) float64 {
	if len(bars) == 0 {
		return 0.0
	}
	var pv, vol float64
	for _, b := range bars {
		typical := (b.High + b.Low + b.Close) / 3
		pv += typical * float64(b.Volume)
		vol += float64(b.Volume)
	}
	if vol == 0 {
		return bars[len(bars)-1].Close
	}
	return pv / vol
}

// ATR computes the average true range as a simple moving average of the
// true range over the last period bars. With fewer bars than the period
// it averages what is available. Returns 0 with fewer than 2 bars.
func ATR(bars []types.Bar, period int) float64 {
	if len(bars) < 2 {
		return 0.0
	}

	tr := make([]float64, len(bars))
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		prevClose := bars[i-1].Close
		hl := bars[i].High - bars[i].Low
		hc := utils.Abs(bars[i].High - prevClose)
		lc := utils.Abs(bars[i].Low - prevClose)
		tr[i] = utils.Max(hl, utils.Max(hc, lc))
	}

	if len(tr) >= period {
		return utils.Average(tr[len(tr)-period:])
	}
	return utils.Average(tr)
}

// HOD returns the session high of day, 0 on empty input.
func HOD(bars []types.Bar) float64 {
	if len(bars) == 0 {
		return 0.0
	}
	hod := bars[0].High
	for _, b := range bars[1:] {
		if b.High > hod {
			hod = b.High
		}
	}
	return hod
}

// LOD returns the session low of day, 0 on empty input.
func LOD(bars []types.Bar) float64 {
	if len(bars) == 0 {
		return 0.0
	}
	lod := bars[0].Low
	for _, b := range bars[1:] {
		if b.Low < lod {
			lod = b.Low
		}
	}
	return lod
}

// ORLevels computes the opening range high and low from bars whose
// timestamp falls in [sessionOpen, sessionOpen+orMinutes). When no bars
// land in that window the first orMinutes bars by position are used.
func ORLevels(bars []types.Bar, sessionOpen time.Time, orMinutes int) (float64, float64) {
	if len(bars) == 0 {
		return 0.0, 0.0
	}

	orEnd := sessionOpen.Add(time.Duration(orMinutes) * time.Minute)

	var orBars []types.Bar
	for _, b := range bars {
		if !b.Timestamp.Before(sessionOpen) && b.Timestamp.Before(orEnd) {
			orBars = append(orBars, b)
		}
	}

	if len(orBars) == 0 {
		// positional fallback for gapped data
		n := orMinutes
		if n > len(bars) {
			n = len(bars)
		}
		orBars = bars[:n]
	}

	return HOD(orBars), LOD(orBars)
}

// NearHOD returns last/hod clamped to [0,1], 0 when hod is not positive.
func NearHOD(last, hod float64) float64 {
	if hod <= 0 {
		return 0.0
	}
	return utils.Clamp(last/hod, 0.0, 1.0)
}

// DetectVWAPCross reports whether, within the last lookback bars, some
// bar before the final one closed below vwap while the final bar closed
// above it. Needs at least 2 bars.
func DetectVWAPCross(bars []types.Bar, vwap float64, lookback int) bool {
	if len(bars) < 2 {
		return false
	}

	recent := bars
	if len(recent) > lookback {
		recent = recent[len(recent)-lookback:]
	}
	if len(recent) < 2 {
		return false
	}

	wasBelow := false
	for _, b := range recent[:len(recent)-1] {
		if b.Close < vwap {
			wasBelow = true
			break
		}
	}
	return wasBelow && recent[len(recent)-1].Close > vwap
}

// FindPullbackLow returns the minimum low over the last lookback bars,
// but only when that low held above vwap. Requires at least lookback
// bars so a fresh session cannot fake a pullback.
func FindPullbackLow(bars []types.Bar, vwap float64, lookback int) *float64 {
	if len(bars) < lookback {
		return nil
	}

	recent := bars[len(bars)-lookback:]
	low := recent[0].Low
	for _, b := range recent[1:] {
		if b.Low < low {
			low = b.Low
		}
	}

	if low > vwap {
		return &low
	}
	return nil
}

// VolumeSoFar sums bar volume for the session.
func VolumeSoFar(bars []types.Bar) int64 {
	var total int64
	for _, b := range bars {
		total += b.Volume
	}
	return total
}

// PctChange returns the percent change from previous to current,
// 0 when previous is not positive.
func PctChange(current, previous float64) float64 {
	if previous <= 0 {
		return 0.0
	}
	return (current - previous) / previous * 100
}

// Rvol computes relative volume. Preferred reference is the 20-day
// average daily volume; the cross-sectional median volume is the
// fallback; with neither available the ratio defaults to 1.0.
func Rvol(volumeSoFar int64, avgDailyVolume, medianVolume float64) float64 {
	if avgDailyVolume > 0 {
		return float64(volumeSoFar) / avgDailyVolume
	}
	if medianVolume > 0 {
		return float64(volumeSoFar) / medianVolume
	}
	return 1.0
}

// LastPrice returns the most recent close, 0 on empty input.
func LastPrice(bars []types.Bar) float64 {
	if len(bars) == 0 {
		return 0.0
	}
	return bars[len(bars)-1].Close
}

// Snapshot is the full indicator set computed from one symbol's bars.
type Snapshot struct {
	Last        float64
	VWAP        float64
	HOD         float64
	LOD         float64
	NearHOD     float64
	VolumeSoFar int64
	ATR1m       float64
	PctChange   float64
	ORH         float64
	ORL         float64
	AboveVWAP   bool
	VWAPCross   bool
	PullbackLow *float64
	OpenPrice   float64
	VsOpen      float64
}

// ComputeAll orchestrates the indicator functions into one snapshot.
// prevClose is the percent-change reference; when nil the session's
// first bar open is used instead.
func ComputeAll(bars []types.Bar, sessionOpen time.Time, prevClose *float64, orMinutes, atrPeriod int) Snapshot {
	last := LastPrice(bars)
	vwap := VWAP(bars)
	hod := HOD(bars)
	orh, orl := ORLevels(bars, sessionOpen, orMinutes)

	var reference float64
	if prevClose != nil {
		reference = *prevClose
	} else if len(bars) > 0 {
		reference = bars[0].Open
	}

	var openPrice, vsOpen float64
	if len(bars) > 0 {
		openPrice = bars[0].Open
	}
	if openPrice > 0 {
		vsOpen = (last - openPrice) / openPrice * 100
	}

	return Snapshot{
		Last:        last,
		VWAP:        vwap,
		HOD:         hod,
		LOD:         LOD(bars),
		NearHOD:     NearHOD(last, hod),
		VolumeSoFar: VolumeSoFar(bars),
		ATR1m:       ATR(bars, atrPeriod),
		PctChange:   PctChange(last, reference),
		ORH:         orh,
		ORL:         orl,
		AboveVWAP:   last > vwap,
		VWAPCross:   DetectVWAPCross(bars, vwap, 5),
		PullbackLow: FindPullbackLow(bars, vwap, 5),
		OpenPrice:   openPrice,
		VsOpen:      vsOpen,
	}
}
