package signer

import "time"

// SigningTime caches the two formatted renderings of the signing instant.
type SigningTime struct {
	time.Time
	long  string
	short string
}

func NewSigningTime(t time.Time) SigningTime {
	return SigningTime{Time: t.UTC()}
}

// Format returns the 20060102T150405Z rendering.
func (t *SigningTime) Format() string {
	if t.long == "" {
		t.long = t.Time.Format(timeFormat)
	}
	return t.long
}

// ShortFormat returns the 20060102 rendering used in the credential scope.
func (t *SigningTime) ShortFormat() string {
	if t.short == "" {
		t.short = t.Time.Format(shortTimeFormat)
	}
	return t.short
}

func isSameDay(x, y time.Time) bool {
	xy, xm, xd := x.Date()
	yy, ym, yd := y.Date()
	return xy == yy && xm == ym && xd == yd
}
