// Package itinerary provides the saved itinerary store: a persisted,
// mutable day-by-day plan of activities whose aggregate total price stays
// consistent under arbitrary insert/update/remove operations.
package itinerary

import "time"

// PaymentStatus represents the payment state of a planned activity.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// PlannedActivity is a single bookable or custom item placed on a day
// plan. The id is unique within its day; cross-day collisions are allowed.
type PlannedActivity struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Time             string        `json:"time"`
	Duration         string        `json:"duration"`
	Category         string        `json:"category,omitempty"`
	Price            float64       `json:"price"`
	Currency         string        `json:"currency,omitempty"`
	IsBreak          bool          `json:"isBreak"`
	PaymentStatus    PaymentStatus `json:"paymentStatus,omitempty"`
	IsCustom         bool          `json:"isCustom,omitempty"`
	Note             string        `json:"note,omitempty"`
	SourceActivityID string        `json:"sourceActivityId,omitempty"`
}

// DayPlan is one calendar day's ordered list of planned activities.
// Activity order is insertion order.
type DayPlan struct {
	Date       string            `json:"date"`
	DayLabel   string            `json:"dayLabel"`
	Activities []PlannedActivity `json:"activities"`
}

// SavedItinerary is the generated day-by-day plan for a trip. TotalPrice
// is derived: the sum of Price over every non-break activity across all
// days.
type SavedItinerary struct {
	CityID     string    `json:"cityId"`
	CityName   string    `json:"cityName"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"createdAt"`
	TotalPrice float64   `json:"totalPrice"`
	Days       []DayPlan `json:"days"`
}

// SumActivityPrices returns the sum of Price over every non-break activity
// in every day. This is the value TotalPrice must always equal.
func (it *SavedItinerary) SumActivityPrices() float64 {
	var total float64
	for _, day := range it.Days {
		for _, act := range day.Activities {
			if act.IsBreak {
				continue
			}
			total += act.Price
		}
	}
	return total
}

// Clone returns a copy that shares no mutable state with the itinerary.
func (it *SavedItinerary) Clone() *SavedItinerary {
	if it == nil {
		return nil
	}

	cpy := *it
	cpy.Days = make([]DayPlan, len(it.Days))
	for i, day := range it.Days {
		cpy.Days[i] = day
		cpy.Days[i].Activities = append([]PlannedActivity(nil), day.Activities...)
	}
	return &cpy
}
