package domain

import "time"

// TimelineEvent — событие жизненного цикла строки заказа.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}
