// Package trajectory synthesizes new points along a time ordered sequence of
// points, blending the properties attached to them.
package trajectory

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/diwise/temporal-resampler/pkg/properties/value"
)

var ErrEmptyTrajectory = fmt.Errorf("empty trajectory")
var ErrTooFewPoints = fmt.Errorf("too few points")
var ErrInvalidInterval = fmt.Errorf("invalid interval")

// MaxResampledPoints limits the number of points a single call to Resample may create
const MaxResampledPoints int = 100000

type Point struct {
	Timestamp  time.Time
	Properties Properties
}

// InterpolatePoints creates a point at the fraction t between a and b
func InterpolatePoints(a, b Point, t float64) (Point, error) {
	ts, err := value.Interpolate(value.Timestamp(a.Timestamp), value.Timestamp(b.Timestamp), t)
	if err != nil {
		return Point{}, fmt.Errorf("timestamp: %w", err)
	}

	props, err := InterpolateProperties(a.Properties, b.Properties, t)
	if err != nil {
		return Point{}, err
	}

	when, err := ts.AsTimestamp()
	if err != nil {
		return Point{}, fmt.Errorf("timestamp: %w", err)
	}

	return Point{Timestamp: when, Properties: props}, nil
}

type Trajectory struct {
	ObjectID string
	Points   []Point
}

// New creates a trajectory with its points sorted by timestamp. Points that share a
// timestamp keep their relative order.
func New(objectID string, points ...Point) Trajectory {
	sorted := slices.Clone(points)
	slices.SortStableFunc(sorted, func(a, b Point) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	return Trajectory{ObjectID: objectID, Points: sorted}
}

func (tr Trajectory) Len() int {
	return len(tr.Points)
}

func (tr Trajectory) IsEmpty() bool {
	return len(tr.Points) == 0
}

func (tr Trajectory) StartTime() time.Time {
	if tr.IsEmpty() {
		return time.Time{}
	}
	return tr.Points[0].Timestamp
}

func (tr Trajectory) EndTime() time.Time {
	if tr.IsEmpty() {
		return time.Time{}
	}
	return tr.Points[len(tr.Points)-1].Timestamp
}

func (tr Trajectory) Duration() time.Duration {
	return tr.EndTime().Sub(tr.StartTime())
}

// PointAtTime returns the point at when, interpolating between the two closest
// points. Times before the start or after the end return the first and last point.
func (tr Trajectory) PointAtTime(when time.Time) (Point, error) {
	if tr.IsEmpty() {
		return Point{}, ErrEmptyTrajectory
	}

	first := tr.Points[0]
	last := tr.Points[len(tr.Points)-1]

	if !when.After(first.Timestamp) {
		return first, nil
	}

	if !when.Before(last.Timestamp) {
		return last, nil
	}

	idx, found := slices.BinarySearchFunc(tr.Points, when, func(p Point, t time.Time) int {
		return p.Timestamp.Compare(t)
	})
	if found {
		return tr.Points[idx], nil
	}

	before := tr.Points[idx-1]
	after := tr.Points[idx]

	t := float64(when.Sub(before.Timestamp)) / float64(after.Timestamp.Sub(before.Timestamp))

	p, err := InterpolatePoints(before, after, t)
	if err != nil {
		return Point{}, err
	}

	p.Timestamp = when

	return p, nil
}

// PointAtFraction returns the point at a fraction of the trajectory's duration, where
// 0 is the first point and 1 is the last.
func (tr Trajectory) PointAtFraction(fraction float64) (Point, error) {
	if math.IsNaN(fraction) {
		return Point{}, fmt.Errorf("%w: %v", value.ErrInvalidInterpolant, fraction)
	}

	if tr.IsEmpty() {
		return Point{}, ErrEmptyTrajectory
	}

	if fraction <= 0 {
		return tr.Points[0], nil
	}

	if fraction >= 1 {
		return tr.Points[len(tr.Points)-1], nil
	}

	offset := time.Duration(math.Round(fraction * float64(tr.Duration())))

	return tr.PointAtTime(tr.StartTime().Add(offset))
}

// SubsetDuringInterval returns the part of the trajectory between start and end, with
// interpolated end points. The result is empty if the interval and the trajectory do
// not overlap.
func (tr Trajectory) SubsetDuringInterval(start, end time.Time) (Trajectory, error) {
	subset := Trajectory{ObjectID: tr.ObjectID}

	if tr.IsEmpty() || end.Before(start) || end.Before(tr.StartTime()) || start.After(tr.EndTime()) {
		return subset, nil
	}

	if start.Before(tr.StartTime()) {
		start = tr.StartTime()
	}

	if end.After(tr.EndTime()) {
		end = tr.EndTime()
	}

	first, err := tr.PointAtTime(start)
	if err != nil {
		return subset, err
	}
	subset.Points = append(subset.Points, first)

	for _, p := range tr.Points {
		if p.Timestamp.After(start) && p.Timestamp.Before(end) {
			subset.Points = append(subset.Points, p)
		}
	}

	if end.After(start) {
		last, err := tr.PointAtTime(end)
		if err != nil {
			return subset, err
		}
		subset.Points = append(subset.Points, last)
	}

	return subset, nil
}

// Resample creates a new trajectory with points every interval, starting at the first
// point. The last point is only included if it falls on the interval.
func (tr Trajectory) Resample(interval time.Duration) (Trajectory, error) {
	if interval <= 0 {
		return Trajectory{}, fmt.Errorf("%w: %s", ErrInvalidInterval, interval)
	}

	if tr.IsEmpty() {
		return Trajectory{}, ErrEmptyTrajectory
	}

	count := int64(tr.Duration()/interval) + 1
	if count > int64(MaxResampledPoints) {
		return Trajectory{}, fmt.Errorf("%w: %s would create %d points", ErrInvalidInterval, interval, count)
	}

	resampled := Trajectory{
		ObjectID: tr.ObjectID,
		Points:   make([]Point, 0, count),
	}

	start := tr.StartTime()

	for i := int64(0); i < count; i++ {
		when := start.Add(time.Duration(i) * interval)

		p, err := tr.PointAtTime(when)
		if err != nil {
			return Trajectory{}, fmt.Errorf("failed to resample %s at %s: %w", tr.ObjectID, when.Format(time.RFC3339), err)
		}

		resampled.Points = append(resampled.Points, p)
	}

	return resampled, nil
}

// Predict returns the point at when. Inside the trajectory it behaves like PointAtTime,
// outside of it the properties are extrapolated from the two closest points.
func (tr Trajectory) Predict(when time.Time) (Point, error) {
	if tr.IsEmpty() {
		return Point{}, ErrEmptyTrajectory
	}

	if !when.Before(tr.StartTime()) && !when.After(tr.EndTime()) {
		return tr.PointAtTime(when)
	}

	if len(tr.Points) < 2 {
		return Point{}, fmt.Errorf("%w: at least two points are needed to extrapolate", ErrTooFewPoints)
	}

	a, b := tr.Points[len(tr.Points)-2], tr.Points[len(tr.Points)-1]
	if when.Before(tr.StartTime()) {
		a, b = tr.Points[0], tr.Points[1]
	}

	span := b.Timestamp.Sub(a.Timestamp)
	if span == 0 {
		return Point{}, fmt.Errorf("%w: the closest points share a timestamp", ErrTooFewPoints)
	}

	t := float64(when.Sub(a.Timestamp)) / float64(span)

	props, err := ExtrapolateProperties(a.Properties, b.Properties, t)
	if err != nil {
		return Point{}, err
	}

	return Point{Timestamp: when, Properties: props}, nil
}
