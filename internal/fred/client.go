// Package fred fetches observation series from the FRED API.
package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/macrodash/macrodash/internal/fetcher"
	"github.com/macrodash/macrodash/internal/model"
)

// Failure taxonomy. Both kinds are per-series and non-fatal to a batch run:
// transient failures are expected to succeed on the next scheduled run, data
// unavailability means the provider returned nothing usable for the series.
var (
	ErrTransient       = eris.New("fred: transient fetch failure")
	ErrDataUnavailable = eris.New("fred: data unavailable")
)

// Series names one series to fetch: a logical name plus its FRED series ID.
type Series struct {
	Name string
	ID   string
}

// Options configures the client.
type Options struct {
	APIKey    string
	BaseURL   string        // default https://api.stlouisfed.org
	PaceEvery int           // pause after this many requests; default 20
	PaceDelay time.Duration // length of the pacing pause; default 1s
}

// FetchResult aggregates a batch fetch: the per-series observation groups in
// request order, plus attempt counters. Failures maps series ID to the error
// that skipped it.
type FetchResult struct {
	Series    []model.SeriesData
	Attempted int
	Succeeded int
	Failed    int
	Failures  map[string]error
}

// Observations returns the total observation count across all series.
func (r *FetchResult) Observations() int {
	n := 0
	for _, sd := range r.Series {
		n += len(sd.Obs)
	}
	return n
}

// Client fetches FRED observation series through a rate-limited fetcher.
type Client struct {
	f     fetcher.Fetcher
	opts  Options
	now   func() time.Time
	pause func(ctx context.Context, d time.Duration)
}

// NewClient creates a FRED client.
func NewClient(f fetcher.Fetcher, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.stlouisfed.org"
	}
	if opts.PaceEvery <= 0 {
		opts.PaceEvery = 20
	}
	if opts.PaceDelay <= 0 {
		opts.PaceDelay = time.Second
	}
	return &Client{
		f:     f,
		opts:  opts,
		now:   time.Now,
		pause: sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// FetchAll fetches every series in order. The start date is since when
// non-nil, otherwise now minus yearsBack years. Per-series failures are
// logged, counted, and skipped; only context cancellation aborts the batch.
// After every PaceEvery requests the client pauses for PaceDelay to respect
// the provider's rate limits.
func (c *Client) FetchAll(ctx context.Context, series []Series, since *time.Time, yearsBack int) (*FetchResult, error) {
	log := zap.L().With(zap.String("component", "fred.client"))

	start := c.resolveStart(since, yearsBack)
	log.Info("fetching series",
		zap.Int("count", len(series)),
		zap.Time("start", start),
	)

	result := &FetchResult{Failures: make(map[string]error)}

	for i, s := range series {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result.Attempted++
		sd, err := c.FetchSeries(ctx, s, start)
		if err != nil {
			log.Warn("skip series",
				zap.String("series", s.ID),
				zap.String("name", s.Name),
				zap.Error(err),
			)
			result.Failed++
			result.Failures[s.ID] = err
		} else {
			result.Succeeded++
			result.Series = append(result.Series, *sd)
		}

		// FRED allows ~120 requests/minute; pause periodically to stay well under.
		if (i+1)%c.opts.PaceEvery == 0 && i+1 < len(series) {
			c.pause(ctx, c.opts.PaceDelay)
		}
	}

	log.Info("fetch complete",
		zap.Int("attempted", result.Attempted),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("observations", result.Observations()),
	)
	return result, nil
}

// FetchSeries fetches one series starting at the given date. Observations are
// returned ascending by date. Missing markers (".") and unparseable values
// are coerced to null and dropped rather than raising.
func (c *Client) FetchSeries(ctx context.Context, s Series, start time.Time) (*model.SeriesData, error) {
	u := fmt.Sprintf("%s/fred/series/observations?%s", c.opts.BaseURL, url.Values{
		"series_id":         []string{s.ID},
		"api_key":           []string{c.opts.APIKey},
		"file_type":         []string{"json"},
		"sort_order":        []string{"asc"},
		"observation_start": []string{start.Format("2006-01-02")},
	}.Encode())

	body, err := c.f.Download(ctx, u)
	if err != nil {
		return nil, eris.Wrapf(ErrTransient, "series %s: %v", s.ID, err)
	}
	data, err := io.ReadAll(body)
	_ = body.Close()
	if err != nil {
		return nil, eris.Wrapf(ErrTransient, "series %s: read body: %v", s.ID, err)
	}

	var resp observationsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, eris.Wrapf(ErrDataUnavailable, "series %s: malformed response: %v", s.ID, err)
	}

	sd := &model.SeriesData{Name: s.Name, SeriesID: s.ID}
	for _, obs := range resp.Observations {
		if obs.Value == "." {
			continue
		}
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		d, err := time.Parse("2006-01-02", obs.Date)
		if err != nil {
			continue
		}
		sd.Obs = append(sd.Obs, model.Observation{Date: d, Value: v})
	}

	if len(sd.Obs) == 0 {
		return nil, eris.Wrapf(ErrDataUnavailable, "series %s: no observations", s.ID)
	}

	// The provider returns rows in the requested order, but the calculator
	// depends on ascending dates.
	sort.Slice(sd.Obs, func(i, j int) bool { return sd.Obs[i].Date.Before(sd.Obs[j].Date) })
	return sd, nil
}

func (c *Client) resolveStart(since *time.Time, yearsBack int) time.Time {
	if since != nil {
		return *since
	}
	if yearsBack <= 0 {
		yearsBack = 10
	}
	return c.now().AddDate(-yearsBack, 0, 0)
}
