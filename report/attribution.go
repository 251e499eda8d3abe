package report

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/vegasq/zaius-export/reader"
	"github.com/vegasq/zaius-export/scan"
)

// DefaultAttributionWindow is how long an email engagement is credited
// with later purchases
const DefaultAttributionWindow = 72 * time.Hour

// ProductAttribution credits each purchase to the customer's most recent
// email open or click, when that engagement happened within the window
// before the purchase.
type ProductAttribution struct {
	window time.Duration
}

func (*ProductAttribution) Name() string { return "product-attribution" }
func (*ProductAttribution) Short() string {
	return "individual purchases attributed to the last touched campaign"
}
func (*ProductAttribution) Args() []string { return []string{"start_date", "end_date"} }

// BindFlags registers --window
func (p *ProductAttribution) BindFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&p.window, "window", DefaultAttributionWindow, "attribution window after an email open or click")
}

var attributionColumns = []string{
	"user_id",
	"order_id",
	"product_id",
	"purchased_at",
	"campaign_id",
	"campaign",
	"touch",
	"touched_at",
	"hours since touch",
}

const attributionQuery = `
select
    user_id,
    ts,
    event_type,
    action,
    campaign_id,
    campaign,
    order_id,
    product_id
from events
where
    ts >= %d
    and ts < %d
    and (
        (event_type = 'email' and (action = 'open' or action = 'click'))
        or (event_type = 'order' and action = 'purchase')
    )
order by user_id, ts`

// touch is an email engagement
type touch struct {
	ts         int64
	action     string
	campaignID string
	campaign   string
}

// attribution is a purchase credited to a touch
type attribution struct {
	user      string
	orderID   string
	productID string
	ts        int64
	touch     touch
}

type touchState struct {
	last         *touch
	attributions []attribution
}

// attributionScan credits purchases made in [from, to) to the latest
// touch less than window earlier
func attributionScan(from, to int64, window time.Duration) scan.Grouped[reader.Row, string, *touchState, []attribution] {
	windowSeconds := int64(window / time.Second)

	return scan.Grouped[reader.Row, string, *touchState, []attribution]{
		Key:  func(r reader.Row) string { return r.Value("user_id") },
		Zero: func() *touchState { return &touchState{} },
		Fold: func(s *touchState, r reader.Row) (*touchState, error) {
			ts, err := parseTS(r, "ts")
			if err != nil {
				return s, fmt.Errorf("user %s: %w", r.Value("user_id"), err)
			}

			switch r.Value("event_type") {
			case "email":
				s.last = &touch{
					ts:         ts,
					action:     r.Value("action"),
					campaignID: r.Value("campaign_id"),
					campaign:   r.Value("campaign"),
				}
			case "order":
				if ts < from || ts >= to || s.last == nil {
					return s, nil
				}
				if elapsed := ts - s.last.ts; elapsed > 0 && elapsed < windowSeconds {
					s.attributions = append(s.attributions, attribution{
						user:      r.Value("user_id"),
						orderID:   r.Value("order_id"),
						productID: r.Value("product_id"),
						ts:        ts,
						touch:     *s.last,
					})
				}
			}
			return s, nil
		},
		Emit: func(_ string, s *touchState) ([]attribution, bool) {
			return s.attributions, len(s.attributions) > 0
		},
	}
}

func (p *ProductAttribution) Run(ctx context.Context, env *Env, args []string) error {
	if err := checkArgs(p, args); err != nil {
		return err
	}
	from, to, err := parseRange(args[0], args[1])
	if err != nil {
		return err
	}
	window := p.window
	if window == 0 {
		window = DefaultAttributionWindow
	}
	if window < time.Second {
		return fmt.Errorf("%w: window %s is shorter than a second", ErrUsage, window)
	}

	// Touches before the range can still be credited with purchases in it.
	lookback := from.Add(-window)
	text := fmt.Sprintf(attributionQuery, lookback.Unix(), to.Unix())
	stream, rows, err := env.open(ctx, p.Name(), text)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := env.Out.WriteHeader(attributionColumns); err != nil {
		return err
	}
	for a, err := range scan.Flatten(attributionScan(from.Unix(), to.Unix(), window).Run(rows)) {
		if err != nil {
			return err
		}
		if err := env.Out.WriteRow([]interface{}{
			a.user,
			a.orderID,
			a.productID,
			time.Unix(a.ts, 0).UTC().Format(time.RFC3339),
			a.touch.campaignID,
			a.touch.campaign,
			a.touch.action,
			time.Unix(a.touch.ts, 0).UTC().Format(time.RFC3339),
			float64((a.ts-a.touch.ts)*100/3600) / 100,
		}); err != nil {
			return err
		}
	}
	return env.Out.Close()
}
