package model

import "time"

type CaseStatus struct {
	ObservedAt  time.Time
	ReceiptNum  string
	Status      string
	Description string
}
