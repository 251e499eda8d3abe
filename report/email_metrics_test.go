package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/zaius-export/query"
	"github.com/vegasq/zaius-export/reader"
)

func emailEvent(user, action, runTS string) query.MapRow {
	return query.MapRow{
		"zaius_id":                 user,
		"event_type":               "email",
		"action":                   action,
		"campaign_schedule_run_ts": runTS,
		"campaign_id":              "9097",
		"ts":                       runTS,
	}
}

func emailEvents() []query.MapRow {
	unsubscribe := emailEvent("u3", "unsubscribe", "100")
	unsubscribe["event_type"] = "list"
	unsubscribe["ts"] = "150"

	otherCampaign := emailEvent("u4", "sent", "100")
	otherCampaign["campaign_id"] = "1"

	return []query.MapRow{
		emailEvent("u1", "open", "100"),
		emailEvent("u2", "sent", "200"),
		emailEvent("u1", "sent", "100"),
		emailEvent("u3", "spamreport", "100"),
		emailEvent("u1", "open", "100"),
		emailEvent("u2", "open", "100"),
		emailEvent("u1", "click", "100"),
		emailEvent("u2", "sent", "100"),
		emailEvent("u3", "sent", "100"),
		unsubscribe,
		otherCampaign,
		emailEvent("u5", "sent", "90000"),
		{"zaius_id": "u6", "event_type": "order", "action": "purchase"},
	}
}

func TestEmailMetrics(t *testing.T) {
	q := &fakeQuerier{events: emailEvents()}
	env, buf := newEnv(q)

	err := (&EmailMetrics{}).Run(context.Background(), env, []string{"9097", "1970-01-01", "1970-01-02"})
	require.NoError(t, err)

	records := readCSV(t, buf)
	require.Len(t, records, 2)
	assert.Equal(t, emailMetricsColumns, records[0])
	assert.Equal(t, []string{"4", "2", "1", "1", "1", "50", "25", "25"}, records[1])

	require.Len(t, q.specs, 1)
	spec := q.specs[0]
	assert.Equal(t, "events", spec.Object)
	require.Len(t, spec.Sorts, 3)
	assert.Equal(t, "zaius_id", spec.Sorts[0].Field.String())
	assert.True(t, q.streams[0].closed, "stream closed after the report")
}

func TestEmailMetrics_NoSends(t *testing.T) {
	env, buf := newEnv(&fakeQuerier{})

	require.NoError(t, (&EmailMetrics{}).Run(context.Background(), env, []string{"9097", "1970-01-01", "1970-01-02"}))
	assert.Equal(t, []string{"0", "0", "0", "0", "0", "0", "0", "0"}, readCSV(t, buf)[1])
}

func TestEmailMetrics_MissingColumn(t *testing.T) {
	q := &fakeQuerier{events: emailEvents(), dropColumn: "campaign_schedule_run_ts"}
	env, _ := newEnv(q)

	err := (&EmailMetrics{}).Run(context.Background(), env, []string{"9097", "1970-01-01", "1970-01-02"})
	assert.ErrorIs(t, err, reader.ErrMissingColumn)
	assert.True(t, q.streams[0].closed)
}
