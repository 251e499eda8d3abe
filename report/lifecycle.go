package report

import (
	"context"
	"fmt"
	"time"

	"github.com/vegasq/zaius-export/reader"
	"github.com/vegasq/zaius-export/scan"
)

// Lifecycle stages by number of distinct orders
const (
	StageNoPurchase     = "no_purchase"
	StageOnePurchase    = "one_purchase"
	StageRepeatPurchase = "repeat_purchase"
	StageLoyal          = "loyal"
)

var lifecycleStages = []string{StageNoPurchase, StageOnePurchase, StageRepeatPurchase, StageLoyal}

// stage returns the lifecycle stage of a customer with orders purchases
func stage(orders int) string {
	switch orders {
	case 0:
		return StageNoPurchase
	case 1:
		return StageOnePurchase
	case 2:
		return StageRepeatPurchase
	default:
		return StageLoyal
	}
}

// LifecycleProgress counts, for every month of a range, how many known
// customers were in each lifecycle stage. A customer is known from their
// first event and moves to the next stage in the month of each purchase.
type LifecycleProgress struct{}

func (*LifecycleProgress) Name() string { return "lifecycle-progress" }
func (*LifecycleProgress) Short() string {
	return "track how your mix of customers by lifecycle stage has evolved over time"
}
func (*LifecycleProgress) Args() []string { return []string{"start_month", "end_month"} }

const lifecycleQuery = `
select
    ts,
    user_id,
    event_type,
    order_id
from events
where
    ts < %d
    and (
        (
            event_type = 'order'
            and action = 'purchase'
            and order.status <> 'canceled'
        )
        or event_type = 'customer_discovered'
    )
order by user_id, ts`

// monthLayout accepts YYYY-MM and YYYY-M
const monthLayout = "2006-1"

// parseMonth parses a month argument as the first day of that month, UTC
func parseMonth(s string) (time.Time, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid month %q, want YYYY-MM", ErrUsage, s)
	}
	return t, nil
}

// monthsBetween returns the number of calendar months from begin to end,
// negative when end is earlier
func monthsBetween(begin, end time.Time) int {
	return end.Year()*12 + int(end.Month()) - (begin.Year()*12 + int(begin.Month()))
}

// monthAdd returns the first day of the month step months after begin
func monthAdd(begin time.Time, step int) time.Time {
	return time.Date(begin.Year(), begin.Month()+time.Month(step), 1, 0, 0, 0, 0, time.UTC)
}

// stageSpan is a run of months [from, to) a customer spent in one stage
type stageSpan struct {
	from, to int
	stage    string
}

// customerHistory is the state folded over one customer's events
type customerHistory struct {
	started bool
	month   int
	orders  map[string]struct{}
	spans   []stageSpan
}

// lifecycleScan builds per-customer stage spans over months months
// starting at start
func lifecycleScan(start time.Time, months int) scan.Grouped[reader.Row, string, *customerHistory, []stageSpan] {
	return scan.Grouped[reader.Row, string, *customerHistory, []stageSpan]{
		Key: func(r reader.Row) string { return r.Value("user_id") },
		Zero: func() *customerHistory {
			return &customerHistory{orders: make(map[string]struct{})}
		},
		Fold: func(h *customerHistory, r reader.Row) (*customerHistory, error) {
			ts, err := parseTS(r, "ts")
			if err != nil {
				return h, fmt.Errorf("user %s: %w", r.Value("user_id"), err)
			}
			month := monthsBetween(start, time.Unix(ts, 0).UTC())

			if !h.started {
				h.started = true
				h.month = max(0, month)
			}
			if r.Value("event_type") == "order" {
				h.spans = append(h.spans, stageSpan{from: h.month, to: month, stage: stage(len(h.orders))})
				h.month = max(0, month)
				h.orders[r.Value("order_id")] = struct{}{}
			}
			return h, nil
		},
		Emit: func(_ string, h *customerHistory) ([]stageSpan, bool) {
			spans := append(h.spans, stageSpan{from: h.month, to: months, stage: stage(len(h.orders))})
			return spans, true
		},
	}
}

func (l *LifecycleProgress) Run(ctx context.Context, env *Env, args []string) error {
	if err := checkArgs(l, args); err != nil {
		return err
	}
	start, err := parseMonth(args[0])
	if err != nil {
		return err
	}
	end, err := parseMonth(args[1])
	if err != nil {
		return err
	}
	months := monthsBetween(start, end)
	if months <= 0 {
		return fmt.Errorf("%w: end month %s is not after start month %s", ErrUsage, args[1], args[0])
	}

	stream, rows, err := env.open(ctx, l.Name(), fmt.Sprintf(lifecycleQuery, end.Unix()))
	if err != nil {
		return err
	}
	defer stream.Close()

	counts := make([]map[string]int, months)
	for i := range counts {
		counts[i] = make(map[string]int, len(lifecycleStages))
	}
	for span, err := range scan.Flatten(lifecycleScan(start, months).Run(rows)) {
		if err != nil {
			return err
		}
		for i := max(0, span.from); i < min(span.to, months); i++ {
			counts[i][span.stage]++
		}
	}

	if err := env.Out.WriteHeader(append([]string{"month"}, lifecycleStages...)); err != nil {
		return err
	}
	for i, count := range counts {
		row := []interface{}{monthAdd(start, i).Format("2006-01")}
		for _, s := range lifecycleStages {
			row = append(row, count[s])
		}
		if err := env.Out.WriteRow(row); err != nil {
			return err
		}
	}
	return env.Out.Close()
}
