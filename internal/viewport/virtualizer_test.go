package viewport

import (
	"testing"
	"time"

	"bandline/internal/timeaxis"
)

func testAxis(t *testing.T) *timeaxis.Axis {
	t.Helper()
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	a, err := timeaxis.New(timeaxis.Config{
		Start:   start,
		End:     start.Add(10 * time.Hour),
		TickDur: time.Hour,
		WidthPx: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func rowStrip(n int, h float64) []RowPosition {
	rows := make([]RowPosition, n)
	for i := range rows {
		rows[i] = RowPosition{RowID: string(rune('a' + i)), Top: float64(i) * h, Height: h}
	}
	return rows
}

func TestVisibleRows_ExactViewport(t *testing.T) {
	rows := rowStrip(10, 50) // content height 500
	v := Virtualizer{}

	got := v.VisibleRows(100, 100, rows)
	want := []string{"c", "d"}
	if len(got) != len(want) {
		t.Fatalf("rows: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rows: got %v want %v", got, want)
		}
	}
}

func TestVisibleRows_BufferPullsInNeighbors(t *testing.T) {
	rows := rowStrip(10, 50)
	v := Virtualizer{BufferPx: 50}
	got := v.VisibleRows(100, 100, rows)
	// One extra row on each side.
	if len(got) != 4 || got[0] != "b" || got[3] != "e" {
		t.Fatalf("buffered rows: got %v", got)
	}
}

func TestVisibleRows_PartialOverlapCounts(t *testing.T) {
	rows := rowStrip(10, 50)
	v := Virtualizer{}
	got := v.VisibleRows(125, 100, rows) // cuts rows c and e at the edges
	if len(got) != 3 || got[0] != "c" || got[2] != "e" {
		t.Fatalf("partial rows: got %v", got)
	}
}

func TestVisibleWindow_OnePixelOutsideExcludedWithoutBuffer(t *testing.T) {
	a := testAxis(t)

	// An event box ending 1px left of the viewport.
	barLeft, barRight := 99.0, 199.0

	w0 := Virtualizer{}.VisibleWindow(200, 300, a)
	if w0.Contains(barLeft, barRight) {
		t.Fatalf("buffer=0: box ending at %v must be outside window starting at %v", barRight, w0.LeftPx)
	}

	w200 := Virtualizer{BufferPx: 200}.VisibleWindow(200, 300, a)
	if !w200.Contains(barLeft, barRight) {
		t.Fatalf("buffer=200: same box must be inside window starting at %v", w200.LeftPx)
	}
}

func TestVisibleWindow_NegativeBufferSameAsZero(t *testing.T) {
	a := testAxis(t)
	w0 := Virtualizer{}.VisibleWindow(100, 200, a)
	wn := Virtualizer{BufferPx: -10}.VisibleWindow(100, 200, a)
	if w0 != wn {
		t.Fatalf("negative buffer must behave like zero: %+v vs %+v", w0, wn)
	}
}

func TestVisibleWindow_ClampsToAxis(t *testing.T) {
	a := testAxis(t)
	w := Virtualizer{BufferPx: 500}.VisibleWindow(0, 200, a)
	if w.LeftPx != 0 {
		t.Fatalf("left clamp: got %v", w.LeftPx)
	}
	if w.RightPx != 700 {
		t.Fatalf("right: got %v want 700", w.RightPx)
	}
	if w.StartMS != a.StartMS() {
		t.Fatalf("window start: got %d want axis start %d", w.StartMS, a.StartMS())
	}
}

func TestVisibleWindow_DateBoundsOrderedOnRTLAxis(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	a, err := timeaxis.New(timeaxis.Config{
		Start:   start,
		End:     start.Add(10 * time.Hour),
		TickDur: time.Hour,
		WidthPx: 1000,
		RTL:     true,
	})
	if err != nil {
		t.Fatal(err)
	}
	w := Virtualizer{}.VisibleWindow(100, 200, a)
	if w.StartMS >= w.EndMS {
		t.Fatalf("window dates must stay ordered on an rtl axis: %d..%d", w.StartMS, w.EndMS)
	}
}

func TestVisibleWindow_ZeroValueMeansNotComputed(t *testing.T) {
	var w Window
	if w != (Window{}) {
		t.Fatalf("zero window must be distinguishable")
	}
	a := testAxis(t)
	computed := Virtualizer{}.VisibleWindow(0, 10, a)
	if computed == (Window{}) {
		t.Fatalf("a computed unbuffered window must not equal the zero value")
	}
}
