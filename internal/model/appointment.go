package model

import "time"

const DateLayout = "2006-01-02"

type Appointment struct {
	Date time.Time
}

func (a Appointment) DateText() string {
	return a.Date.Format(DateLayout)
}

func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}
