// Package common holds shared value types used across TenderGate layers.
package common

import "time"

// AmountRange is an inclusive monetary range in the tender's currency.
// A zero Max means "unbounded above".
type AmountRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v falls inside the range.
func (r AmountRange) Contains(v float64) bool {
	if v < r.Min {
		return false
	}
	if r.Max > 0 && v > r.Max {
		return false
	}
	return true
}

// IsZero reports whether the range is unset.
func (r AmountRange) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// Pagination carries list paging parameters.
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// Normalize clamps paging parameters to sane bounds.
func (p *Pagination) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ProducerMessage is the transport-agnostic message handed to the Kafka
// producer.
type ProducerMessage struct {
	Topic     string            `json:"topic"`
	Key       []byte            `json:"key,omitempty"`
	Value     []byte            `json:"value"`
	Headers   map[string]string `json:"headers,omitempty"`
	Timestamp time.Time         `json:"timestamp,omitempty"`
	Partition int               `json:"partition,omitempty"`
}

// Page slices items to the window this pagination selects.
func Page[T any](items []T, p Pagination) []T {
	p.Normalize()
	start := p.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
