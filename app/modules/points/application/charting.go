package pointsservice

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"math"
	"slices"
	"strconv"
	"time"

	pointsdb "github.com/Black-And-White-Club/poker-points/app/modules/points/infrastructure/repositories"
	"github.com/Black-And-White-Club/poker-points/app/shared/results"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette colours a rendered chart.
type ChartPalette struct {
	Background  drawing.Color
	PrimaryLine drawing.Color
	AccentLine  drawing.Color
	TextColor   drawing.Color
}

// DefaultChartPalette is felt green with chip-gold markers.
var DefaultChartPalette = ChartPalette{
	Background:  drawing.ColorFromHex("0f2a1d"),
	PrimaryLine: drawing.ColorFromHex("3fa36b"),
	AccentLine:  drawing.ColorFromHex("d4af37"),
	TextColor:   drawing.ColorFromHex("f2f2f2"),
}

// RenderPointsHistoryChart draws a membership's running balance as a PNG.
func (s *PointsService) RenderPointsHistoryChart(ctx context.Context, membershipID int64) ([]byte, error) {
	result, err := withTelemetry(s, ctx, "RenderPointsHistoryChart", strconv.FormatInt(membershipID, 10), func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		if _, err := s.repo.GetMembership(ctx, nil, membershipID); err != nil {
			if errors.Is(err, pointsdb.ErrNotFound) {
				return results.FailureResult[[]byte, error](ErrMembershipNotFound), nil
			}
			return results.OperationResult[[]byte, error]{}, err
		}
		entries, err := s.repo.ListLedgerEntries(ctx, nil, membershipID, 0)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		png, err := GeneratePointsHistoryChart(toLedgerViews(entries), s.palette)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		return results.SuccessResult[[]byte, error](png), nil
	})
	return unwrap(result, err)
}

// GeneratePointsHistoryChart plots the cumulative balance implied by history,
// which may be in any order.
func GeneratePointsHistoryChart(history []LedgerEntryView, palette ChartPalette) ([]byte, error) {
	if len(history) == 0 {
		return renderNoDataPlaceholder(palette)
	}

	ordered := slices.Clone(history)
	slices.SortStableFunc(ordered, func(a, b LedgerEntryView) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	// Start from a zero balance just before the first entry so a single entry still draws a line.
	xValues := []time.Time{ordered[0].CreatedAt.Add(-time.Minute)}
	yValues := []float64{0}
	balance := 0
	for _, e := range ordered {
		balance += e.PointsDelta
		xValues = append(xValues, e.CreatedAt)
		yValues = append(yValues, float64(balance))
	}

	lo, hi := slices.Min(yValues), slices.Max(yValues)
	pad := math.Max(1, (hi-lo)*0.05)

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style:          chart.Style{FontColor: palette.TextColor},
		},
		YAxis: chart.YAxis{
			Name:  "Points",
			Style: chart.Style{FontColor: palette.TextColor},
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Balance",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: palette.PrimaryLine,
					StrokeWidth: 2,
					DotWidth:    4,
					DotColor:    palette.AccentLine,
				},
			},
		},
	}

	buffer := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// renderNoDataPlaceholder draws straight onto a renderer since a chart needs a series.
func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No points history yet"
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	r.SetFillColor(palette.Background)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(palette.TextColor)
	r.SetFontSize(12.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	buffer := bytes.NewBuffer(nil)
	if err := r.Save(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
