package service

import (
	"time"
)

// Actor is the authenticated caller a service acts for.
type Actor struct {
	OwnerID int64
	Name    string
}

// Clock supplies the current time in the business time zone.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

func (c Clock) now() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return now().In(loc)
}

// today is midnight of the current business day.
func (c Clock) today() time.Time {
	n := c.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, n.Location())
}

func (c Clock) Today() time.Time { return c.today() }
