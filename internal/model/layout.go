package model

import (
    "math"
    "strings"
)

// StageShape names the venue layout an event's seat map is drawn for.
// Besides rendering, the shape decides how many seats each row gets
// when an event is provisioned.
type StageShape string

const (
    ShapeRectangle    StageShape = "rectangle"
    ShapeThrust       StageShape = "thrust"
    ShapeSemicircle   StageShape = "semicircle"
    ShapeDiamond      StageShape = "diamond"
    ShapeAmphitheater StageShape = "amphitheater"
)

// minShapedRowSeats is the floor applied to every non-rectangular row.
const minShapedRowSeats = 2

// ParseStageShape validates a shape name.  Matching is case-insensitive
// and ignores surrounding whitespace.
func ParseStageShape(raw string) (StageShape, bool) {
    switch s := StageShape(strings.ToLower(strings.TrimSpace(raw))); s {
    case ShapeRectangle, ShapeThrust, ShapeSemicircle, ShapeDiamond, ShapeAmphitheater:
        return s, true
    }
    return "", false
}

// SeatsForRow returns the number of seats row rowIndex (0-based) of
// totalRows gets for the given base width and shape.  An empty shape
// behaves like a rectangle.
func SeatsForRow(rowIndex, totalRows, base int, shape StageShape) int {
    ratio := float64(rowIndex) / float64(max(totalRows-1, 1))
    b := float64(base)
    var n float64
    switch shape {
    case ShapeThrust:
        n = math.Round(b * (0.4 + 0.6*ratio))
    case ShapeSemicircle:
        n = math.Round(b * (0.5 + 0.5*ratio))
    case ShapeDiamond:
        mid := 1 - math.Abs(ratio-0.5)*2
        n = math.Round(b * (0.3 + 0.7*mid))
    case ShapeAmphitheater:
        n = math.Round(b * (0.5 + 0.5*(1-ratio)))
    default:
        return base
    }
    return max(minShapedRowSeats, int(n))
}

// RowLabel converts a zero-based row index to a spreadsheet style label:
// A..Z, then AA, AB and so on.  Negative indices yield "".
func RowLabel(i int) string {
    if i < 0 {
        return ""
    }
    res := []rune{}
    for {
        rem := i % 26
        res = append(res, rune('A'+rem))
        i = i/26 - 1
        if i < 0 {
            break
        }
    }
    for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
        res[j], res[k] = res[k], res[j]
    }
    return string(res)
}

// RowIndex is the inverse of RowLabel.  It reports false for labels that
// contain anything but ASCII letters.
func RowIndex(label string) (int, bool) {
    s := strings.ToUpper(strings.TrimSpace(label))
    if s == "" {
        return -1, false
    }
    n := 0
    for i := 0; i < len(s); i++ {
        ch := s[i]
        if ch < 'A' || ch > 'Z' {
            return -1, false
        }
        n = n*26 + int(ch-'A'+1)
    }
    return n - 1, true
}

// SeatLess orders seats by row (A < B < ... < Z < AA) then by number.
func SeatLess(a, b *Seat) bool {
    if a.Row != b.Row {
        ai, okA := RowIndex(a.Row)
        bi, okB := RowIndex(b.Row)
        if !okA || !okB {
            return a.Row < b.Row
        }
        return ai < bi
    }
    return a.Number < b.Number
}
