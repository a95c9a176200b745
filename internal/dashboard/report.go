package dashboard

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var ErrInvalid = errors.New("invalid report range")

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

const (
	topN       = 10
	maxBuckets = 400
)

// SaleLine is one order item with the order facts the report needs.
type SaleLine struct {
	OrderID         string
	Status          string
	PaymentStatus   string
	OrderTotalCents int64
	CreatedAt       time.Time

	ProductID      string
	ProductName    string
	CategoryID     string
	CategoryName   string
	BrandID        string
	BrandName      string
	Qty            int
	LineTotalCents int64
}

// counted reports whether the sale still stands: not cancelled, returned or refunded.
func (l SaleLine) counted() bool {
	switch l.Status {
	case "CANCELLED", "RETURNED":
		return false
	}
	return l.PaymentStatus != "REFUNDED"
}

type Totals struct {
	Users        int   `json:"users"`
	Orders       int   `json:"orders"`
	RevenueCents int64 `json:"revenue_cents"`
	UnitsSold    int   `json:"units_sold"`
}

type Bucket struct {
	Start        time.Time `json:"start"`
	Orders       int       `json:"orders"`
	RevenueCents int64     `json:"revenue_cents"`
}

type Ranked struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Units        int    `json:"units"`
	RevenueCents int64  `json:"revenue_cents"`
}

type Report struct {
	Period        Period         `json:"period"`
	From          time.Time      `json:"from"`
	To            time.Time      `json:"to"`
	Totals        Totals         `json:"totals"`
	StatusCounts  map[string]int `json:"status_counts"`
	Sales         []Bucket       `json:"sales"`
	TopProducts   []Ranked       `json:"top_products"`
	TopCategories []Ranked       `json:"top_categories"`
	TopBrands     []Ranked       `json:"top_brands"`
}

// Aggregate builds the report for [from, to). Revenue is realised only once an order is paid;
// cancelled, returned and refunded orders are left out of revenue and rankings.
func Aggregate(lines []SaleLine, users int, period Period, from, to time.Time) Report {
	r := Report{
		Period:       period,
		From:         from,
		To:           to,
		Totals:       Totals{Users: users},
		StatusCounts: map[string]int{},
	}

	buckets := map[time.Time]*Bucket{}
	for _, start := range bucketStarts(period, from, to) {
		buckets[start] = &Bucket{Start: start}
	}
	seen := map[string]bool{}
	products, categories, brands := map[string]*Ranked{}, map[string]*Ranked{}, map[string]*Ranked{}

	for _, l := range lines {
		if !seen[l.OrderID] {
			seen[l.OrderID] = true
			r.Totals.Orders++
			r.StatusCounts[l.Status]++
			if l.counted() && l.PaymentStatus == "PAID" {
				r.Totals.RevenueCents += l.OrderTotalCents
				b := buckets[truncate(period, l.CreatedAt)]
				if b == nil {
					b = &Bucket{Start: truncate(period, l.CreatedAt)}
					buckets[b.Start] = b
				}
				b.Orders++
				b.RevenueCents += l.OrderTotalCents
			}
		}
		if !l.counted() {
			continue
		}
		r.Totals.UnitsSold += l.Qty
		rank(products, l.ProductID, l.ProductName, l)
		rank(categories, l.CategoryID, l.CategoryName, l)
		rank(brands, l.BrandID, l.BrandName, l)
	}

	r.Sales = make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		r.Sales = append(r.Sales, *b)
	}
	sort.Slice(r.Sales, func(i, j int) bool { return r.Sales[i].Start.Before(r.Sales[j].Start) })
	r.TopProducts = top(products)
	r.TopCategories = top(categories)
	r.TopBrands = top(brands)
	return r
}

func rank(m map[string]*Ranked, id, name string, l SaleLine) {
	e := m[id]
	if e == nil {
		e = &Ranked{ID: id, Name: name}
		m[id] = e
	}
	e.Units += l.Qty
	e.RevenueCents += l.LineTotalCents
}

func top(m map[string]*Ranked) []Ranked {
	out := make([]Ranked, 0, len(m))
	for _, e := range m {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		if out[i].RevenueCents != out[j].RevenueCents {
			return out[i].RevenueCents > out[j].RevenueCents
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// truncate returns the start of the bucket holding t, in UTC. Weeks start on Monday.
func truncate(p Period, t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case PeriodYear:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return day
}

func next(p Period, t time.Time) time.Time {
	switch p {
	case PeriodWeek:
		return t.AddDate(0, 0, 7)
	case PeriodMonth:
		return t.AddDate(0, 1, 0)
	case PeriodYear:
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 0, 1)
}

// countBuckets counts bucket starts in [from, to), stopping once the count passes limit.
func countBuckets(p Period, from, to time.Time, limit int) int {
	n := 0
	for t := truncate(p, from); t.Before(to) && n <= limit; t = next(p, t) {
		n++
	}
	return n
}

func bucketStarts(p Period, from, to time.Time) []time.Time {
	var out []time.Time
	for t := truncate(p, from); t.Before(to); t = next(p, t) {
		out = append(out, t)
	}
	return out
}

// DefaultRange is the window shown when the caller gives no dates.
func DefaultRange(p Period, now time.Time) (time.Time, time.Time) {
	to := truncate(PeriodDay, now).AddDate(0, 0, 1)
	switch p {
	case PeriodWeek:
		return truncate(PeriodWeek, to.AddDate(0, 0, -7*12)), to
	case PeriodMonth:
		return truncate(PeriodMonth, to.AddDate(0, -11, 0)), to
	case PeriodYear:
		return truncate(PeriodYear, to.AddDate(-4, 0, 0)), to
	}
	return to.AddDate(0, 0, -30), to
}

// CheckRange rejects empty or inverted ranges and ranges with too many buckets.
func CheckRange(p Period, from, to time.Time) error {
	if !p.Valid() {
		return fmt.Errorf("%w: period must be day, week, month or year", ErrInvalid)
	}
	if !to.After(from) {
		return fmt.Errorf("%w: to must be after from", ErrInvalid)
	}
	if countBuckets(p, from, to, maxBuckets) > maxBuckets {
		return fmt.Errorf("%w: range is too long for this period", ErrInvalid)
	}
	return nil
}
