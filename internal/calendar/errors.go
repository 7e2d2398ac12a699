package calendar

import "errors"

var (
	// ErrNotFound is returned when a date or observance is not part of a
	// year.
	ErrNotFound = errors.New("not found")

	// ErrDateNotInYear is returned when a block is anchored on a date
	// outside the year being built. It means the rule tables or anchor
	// functions are wrong and aborts the build.
	ErrDateNotInYear = errors.New("date not in year")

	// ErrPhaseOrder is returned when a build phase runs out of order or twice.
	ErrPhaseOrder = errors.New("build phase out of order")

	// ErrYearOutOfRange is returned for years outside MinYear..MaxYear.
	ErrYearOutOfRange = errors.New("year out of range")

	// ErrInvalidYear is returned by Restore when the days do not form a
	// complete year.
	ErrInvalidYear = errors.New("invalid liturgical year")
)
