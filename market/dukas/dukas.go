// Package dukas builds daily price series from Dukascopy candle archives.
//
// Archives are LZMA compressed files of fixed 24 byte big-endian records:
//
//	uint32 seconds from the start of the period
//	uint32 open, close, low, high in points
//	float32 volume
package dukas

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz/lzma"
)

const DefaultBaseURL = "https://datafeed.dukascopy.com/datafeed"

const recordSize = 24

// ErrNoData is returned when the feed has no archive for a period.
var ErrNoData = errors.New("no data")

type Candle struct {
	Time   time.Time
	Open   float64
	Close  float64
	Low    float64
	High   float64
	Volume float64
}

// Client downloads candle archives.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Workers int           // parallel downloads
	Sleep   time.Duration // polite delay per request
}

func NewClient() *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 45 * time.Second},
		Workers: 4,
		Sleep:   50 * time.Millisecond,
	}
}

// DayCandlesURL is the archive of a year of daily bid candles.
func DayCandlesURL(base, symbol string, year int) string {
	return fmt.Sprintf("%s/%s/%04d/BID_candles_day_1.bi5",
		strings.TrimRight(base, "/"), strings.ToUpper(symbol), year)
}

// PointValue is the price of one point: 0.001 for JPY pairs, 0.00001
// otherwise.
func PointValue(symbol string) float64 {
	if strings.Contains(strings.ToUpper(symbol), "JPY") {
		return 1e-3
	}
	return 1e-5
}

// DayCandles fetches the daily candles of symbol for one year.
func (c *Client) DayCandles(ctx context.Context, symbol string, year int) ([]Candle, error) {
	url := DayCandlesURL(c.BaseURL, symbol, year)
	data, err := c.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", symbol, year, err)
	}

	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	candles, err := Decode(data, start, PointValue(symbol))
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", symbol, year, err)
	}

	logrus.WithFields(logrus.Fields{
		"symbol":  symbol,
		"year":    year,
		"candles": len(candles),
	}).Debug("fetched day candles")
	return candles, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.Sleep > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Sleep):
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "fxsim/1.0")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoData
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Decode decompresses an archive and converts its records to candles. An
// empty archive has no candles.
func Decode(data []byte, start time.Time, point float64) ([]Candle, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, err := lzma.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	if len(raw)%recordSize != 0 {
		return nil, fmt.Errorf("archive size %d is not a multiple of %d", len(raw), recordSize)
	}

	be := binary.BigEndian
	out := make([]Candle, 0, len(raw)/recordSize)
	for off := 0; off < len(raw); off += recordSize {
		rec := raw[off : off+recordSize]
		out = append(out, Candle{
			Time:   start.Add(time.Duration(be.Uint32(rec[0:])) * time.Second),
			Open:   float64(be.Uint32(rec[4:])) * point,
			Close:  float64(be.Uint32(rec[8:])) * point,
			Low:    float64(be.Uint32(rec[12:])) * point,
			High:   float64(be.Uint32(rec[16:])) * point,
			Volume: float64(math.Float32frombits(be.Uint32(rec[20:]))),
		})
	}
	return out, nil
}
