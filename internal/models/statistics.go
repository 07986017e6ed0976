package models

import (
	"time"
)

// PestSummary holds descriptive statistics over pest observations,
// calculated store-side.
type PestSummary struct {
	TotalObservations int        `json:"total_observations" db:"total_observations"`
	RBBTotal          int64      `json:"rbb_total" db:"rbb_total"`
	RBBAvg            *float64   `json:"rbb_avg,omitempty" db:"rbb_avg"`
	RBBMax            *int64     `json:"rbb_max,omitempty" db:"rbb_max"`
	WSBTotal          int64      `json:"wsb_total" db:"wsb_total"`
	WSBAvg            *float64   `json:"wsb_avg,omitempty" db:"wsb_avg"`
	WSBMax            *int64     `json:"wsb_max,omitempty" db:"wsb_max"`
	FirstDate         *time.Time `json:"first_date,omitempty" db:"first_date"`
	LastDate          *time.Time `json:"last_date,omitempty" db:"last_date"`
}

// TemporalAggregate is one period of combined pest and environmental
// aggregates. Period is "YYYY-MM" for monthly and "YYYY" for yearly
// grouping.
type TemporalAggregate struct {
	Period             string   `json:"period" db:"period"`
	RBBTotal           int64    `json:"rbb_total" db:"rbb_total"`
	WSBTotal           int64    `json:"wsb_total" db:"wsb_total"`
	AvgTemperature     *float64 `json:"avg_temperature,omitempty" db:"avg_temperature"`
	AvgHumidity        *float64 `json:"avg_humidity,omitempty" db:"avg_humidity"`
	TotalPrecipitation *float64 `json:"total_precipitation,omitempty" db:"total_precipitation"`
}
