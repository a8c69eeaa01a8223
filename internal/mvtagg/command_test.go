package mvtagg

import "testing"

func TestZigzagRoundTrip(t *testing.T) {
	vals := []int32{0, 1, -1, 2, -2, 127, -127, 1 << 20, -(1 << 20)}
	for _, v := range vals {
		got := unzigzag(zigzag(v))
		if got != v {
			t.Errorf("zigzag round trip: got %d, want %d", got, v)
		}
	}
}

func TestZigzagSmallMagnitudesStaySmall(t *testing.T) {
	if zigzag(0) != 0 {
		t.Errorf("zigzag(0) = %d, want 0", zigzag(0))
	}
	if zigzag(-1) != 1 {
		t.Errorf("zigzag(-1) = %d, want 1", zigzag(-1))
	}
	if zigzag(1) != 2 {
		t.Errorf("zigzag(1) = %d, want 2", zigzag(1))
	}
}

func TestCommandInt(t *testing.T) {
	if got := commandInt(cmdMoveTo, 1); got != 9 {
		t.Errorf("commandInt(MoveTo, 1) = %d, want 9", got)
	}
	if got := commandInt(cmdClosePath, 1); got != 15 {
		t.Errorf("commandInt(ClosePath, 1) = %d, want 15", got)
	}
}

func TestPointBufLenMatchesEncodePointRun(t *testing.T) {
	pts := []point{{1, 1}, {2, 2}, {3, -3}}
	var cur cursor
	buf := encodePointRun(nil, pts, &cur)
	if got, want := len(buf), PointBufLen(len(pts)); got != want {
		t.Errorf("len(buf) = %d, PointBufLen = %d", got, want)
	}
}

func TestLineBufLenMatchesEncodeLineRun(t *testing.T) {
	cases := [][]point{
		{{0, 0}},
		{{0, 0}, {1, 0}},
		{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	}
	for _, pts := range cases {
		var cur cursor
		buf := encodeLineRun(nil, pts, &cur)
		if got, want := len(buf), LineBufLen(len(pts)); got != want {
			t.Errorf("LineBufLen(%d): len(buf) = %d, want %d", len(pts), got, want)
		}
	}
}

func TestRingBufLenMatchesEncodeRingRun(t *testing.T) {
	square := []point{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}
	var cur cursor
	buf := encodeRingRun(nil, square, &cur)
	if got, want := len(buf), RingBufLen(len(square)); got != want {
		t.Errorf("len(buf) = %d, RingBufLen = %d", got, want)
	}

	// Fewer than 4 points (including the closing point) is not a ring.
	degenerate := []point{{0, 0}, {1, 0}, {0, 0}}
	var cur2 cursor
	buf2 := encodeRingRun(nil, degenerate, &cur2)
	if len(buf2) != 0 {
		t.Errorf("encodeRingRun on degenerate ring produced %d words, want 0", len(buf2))
	}
	if got := RingBufLen(len(degenerate)); got != 0 {
		t.Errorf("RingBufLen(%d) = %d, want 0", len(degenerate), got)
	}
}

func TestEncodeRingRunDropsClosingPoint(t *testing.T) {
	square := []point{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}}
	var cur cursor
	buf := encodeRingRun(nil, square, &cur)

	// MoveTo(1), dx, dy, LineTo(3), 3*(dx,dy), ClosePath(1) = 11 words.
	if len(buf) != 11 {
		t.Fatalf("len(buf) = %d, want 11", len(buf))
	}
	if buf[len(buf)-1] != commandInt(cmdClosePath, 1) {
		t.Errorf("last word = %d, want ClosePath(1)", buf[len(buf)-1])
	}
	if cur.x != 0 || cur.y != 4 {
		t.Errorf("cursor after ring = (%d,%d), want (0,4) (closing point excluded)", cur.x, cur.y)
	}
}
