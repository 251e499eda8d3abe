package report

import (
	"context"
	"fmt"

	"github.com/vegasq/zaius-export/reader"
	"github.com/vegasq/zaius-export/scan"
)

// EmailMetrics counts unique email engagement for one campaign. A send is
// identified by user and campaign run; each action is counted at most
// once per send.
type EmailMetrics struct{}

func (*EmailMetrics) Name() string { return "email-metrics" }
func (*EmailMetrics) Short() string {
	return "unique sends, opens, clicks and unsubscribes for a campaign"
}
func (*EmailMetrics) Args() []string { return []string{"campaign_id", "start_date", "end_date"} }

var emailMetricsColumns = []string{
	"total sends",
	"unique opens",
	"unique clicks",
	"unique unsubscribes",
	"unique spam reports",
	"open rate (%)",
	"click through rate (%)",
	"unsubscribe rate (%)",
}

const emailMetricsQuery = `
select
    zaius_id,
    action,
    event_type,
    campaign_schedule_run_ts,
    campaign_id
from events
where
    (
        event_type = 'email'
        and (action = 'open' or action = 'click' or action = 'sent' or action = 'spamreport')
        and campaign_schedule_run_ts >= %[1]d
        and campaign_schedule_run_ts < %[2]d
        and campaign_id = %[3]s
    )
    or (
        event_type = 'list'
        and action = 'unsubscribe'
        and ts >= %[1]d
        and ts < %[2]d
        and campaign_id = %[3]s
    )
order by zaius_id, campaign_schedule_run_ts, action`

// sendKey identifies one send of a campaign to a user
type sendKey struct {
	user  string
	runTS string
}

// uniqueActions folds each send into the set of actions seen for it
var uniqueActions = scan.Grouped[reader.Row, sendKey, map[string]bool, map[string]bool]{
	Key: func(r reader.Row) sendKey {
		return sendKey{user: r.Value("zaius_id"), runTS: r.Value("campaign_schedule_run_ts")}
	},
	Zero: func() map[string]bool { return make(map[string]bool) },
	Fold: func(seen map[string]bool, r reader.Row) (map[string]bool, error) {
		seen[r.Value("action")] = true
		return seen, nil
	},
	Emit: func(_ sendKey, seen map[string]bool) (map[string]bool, bool) {
		return seen, true
	},
}

func (m *EmailMetrics) Run(ctx context.Context, env *Env, args []string) error {
	if err := checkArgs(m, args); err != nil {
		return err
	}
	from, to, err := parseRange(args[1], args[2])
	if err != nil {
		return err
	}

	text := fmt.Sprintf(emailMetricsQuery, from.Unix(), to.Unix(), literal(args[0]))
	stream, rows, err := env.open(ctx, m.Name(), text)
	if err != nil {
		return err
	}
	defer stream.Close()

	counts := make(map[string]int)
	for seen, err := range uniqueActions.Run(rows) {
		if err != nil {
			return err
		}
		for action := range seen {
			counts[action]++
		}
	}

	sent := counts["sent"]
	if err := env.Out.WriteHeader(emailMetricsColumns); err != nil {
		return err
	}
	if err := env.Out.WriteRow([]interface{}{
		sent,
		counts["open"],
		counts["click"],
		counts["unsubscribe"],
		counts["spamreport"],
		percent(counts["open"], sent),
		percent(counts["click"], sent),
		percent(counts["unsubscribe"], sent),
	}); err != nil {
		return err
	}
	return env.Out.Close()
}
