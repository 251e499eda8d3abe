package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vegasq/zaius-export/reader"
	"github.com/vegasq/zaius-export/scan"
)

// DefaultContentCampaign is the campaign whose clicks are matched to
// daily content
const DefaultContentCampaign = "9097"

// DailyContent reports how often each piece of marketing content was
// assigned and clicked. Content is identified by its link.
type DailyContent struct {
	campaign string
}

func (*DailyContent) Name() string   { return "daily-content" }
func (*DailyContent) Short() string  { return "assignments and clicks per daily marketing content link" }
func (*DailyContent) Args() []string { return []string{"start_date", "end_date"} }

// BindFlags registers --campaign
func (d *DailyContent) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&d.campaign, "campaign", DefaultContentCampaign, "campaign whose clicks are counted")
}

var dailyContentColumns = []string{
	"count of assignments",
	"content link",
	"count of unique clicks",
	"click through rate (%)",
	"marketing content category",
}

const dailyContentQuery = `
select
    zaius_id,
    action,
    event_type,
    value,
    campaign_schedule_run_ts,
    campaign_id,
    marketing_content_category
from events
where
    (
        event_type = 'marketing_email'
        and action = 'content'
        and campaign_schedule_run_ts >= %[1]d
        and campaign_schedule_run_ts < %[2]d
    )
    or (
        event_type = 'email'
        and action = 'click'
        and campaign_schedule_run_ts >= %[1]d
        and campaign_schedule_run_ts < %[2]d
        and campaign_id = %[3]s
    )
order by value`

type contentStats struct {
	assignments int
	clickers    map[string]struct{}
	category    string
}

type contentRow struct {
	link  string
	stats contentStats
}

// contentByLink groups by the content link with surrounding whitespace
// trimmed; links are otherwise compared exactly as received.
var contentByLink = scan.Grouped[reader.Row, string, contentStats, contentRow]{
	Key: func(r reader.Row) string { return strings.TrimSpace(r.Value("value")) },
	Zero: func() contentStats {
		return contentStats{clickers: make(map[string]struct{})}
	},
	Fold: func(s contentStats, r reader.Row) (contentStats, error) {
		switch r.Value("action") {
		case "content":
			s.assignments++
			if s.category == "" {
				s.category = r.Value("marketing_content_category")
			}
		case "click":
			s.clickers[r.Value("zaius_id")] = struct{}{}
		}
		return s, nil
	},
	Emit: func(link string, s contentStats) (contentRow, bool) {
		return contentRow{link: link, stats: s}, link != ""
	},
}

func (d *DailyContent) Run(ctx context.Context, env *Env, args []string) error {
	if err := checkArgs(d, args); err != nil {
		return err
	}
	from, to, err := parseRange(args[0], args[1])
	if err != nil {
		return err
	}
	campaign := d.campaign
	if campaign == "" {
		campaign = DefaultContentCampaign
	}

	text := fmt.Sprintf(dailyContentQuery, from.Unix(), to.Unix(), literal(campaign))
	stream, rows, err := env.open(ctx, d.Name(), text)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := env.Out.WriteHeader(dailyContentColumns); err != nil {
		return err
	}
	for row, err := range contentByLink.Run(rows) {
		if err != nil {
			return err
		}
		clicks := len(row.stats.clickers)
		if err := env.Out.WriteRow([]interface{}{
			row.stats.assignments,
			row.link,
			clicks,
			percent(clicks, row.stats.assignments),
			row.stats.category,
		}); err != nil {
			return err
		}
	}
	return env.Out.Close()
}
