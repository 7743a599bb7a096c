package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/domain/repository"
	"railmail-service/pkg/logger"
	"railmail-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeAPI struct {
	mu       sync.Mutex
	calls    int
	result   entity.ScheduleFetch
	deadline bool
}

func (f *fakeAPI) FetchSchedule(ctx context.Context, _ string) entity.ScheduleFetch {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	_, f.deadline = ctx.Deadline()
	return f.result
}

type fakeCache struct {
	mu    sync.Mutex
	items map[string]*entity.TrainSchedule
	sets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]*entity.TrainSchedule)}
}

func (c *fakeCache) Get(_ context.Context, trainNumber string) (*entity.TrainSchedule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.items[trainNumber]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

func (c *fakeCache) Set(_ context.Context, s *entity.TrainSchedule) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[s.TrainNumber] = s
	c.sets++
	return nil
}

type fakeDB struct {
	schedules map[string]*entity.TrainSchedule
	err       error
}

func (d *fakeDB) GetByTrainNumber(_ context.Context, trainNumber string) (*entity.TrainSchedule, error) {
	if d.err != nil {
		return nil, d.err
	}
	s, ok := d.schedules[trainNumber]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

var remoteSchedule = &entity.TrainSchedule{
	TrainNumber: "12785",
	TrainName:   "KCG SBC EXP",
	Stops: []entity.StationStop{
		{Code: "KCG", DepartureTime: "19:05", Day: 1},
		{Code: "KRNT", ArrivalTime: "23:48", DepartureTime: "23:50", Day: 1},
		{Code: "SBC", ArrivalTime: "06:55", Day: 2},
	},
}

func TestResolveStaticNeverCallsNetwork(t *testing.T) {
	api := &fakeAPI{result: entity.ScheduleFetch{Outcome: entity.FetchSuccess, Schedule: remoteSchedule}}
	m := metrics.NewTestMetrics()
	r := NewResolver(logger.NewNopLogger(), WithNetwork(api, time.Second), WithMetrics(m))

	lookup, ok := r.Resolve(context.Background(), "12733", "SC", "TPTY")
	if !ok {
		t.Fatal("expected a static result")
	}
	if lookup.DepartureTime != "20:30" || lookup.ArrivalTime != "07:35" || lookup.Duration != "11h 5m" {
		t.Errorf("lookup = %+v", lookup)
	}
	if lookup.TrainName != "NARAYANADRI SF EXP" || lookup.Source != metrics.SourceStatic {
		t.Errorf("name/source = %s/%s", lookup.TrainName, lookup.Source)
	}
	if api.calls != 0 {
		t.Errorf("network calls = %d, want 0", api.calls)
	}
	if got := testutil.ToFloat64(m.ScheduleLookups.WithLabelValues(metrics.SourceStatic)); got != 1 {
		t.Errorf("static lookups = %v, want 1", got)
	}
}

func TestResolveStaticSegments(t *testing.T) {
	r := NewResolver(logger.NewNopLogger())

	tests := []struct {
		train, from, to    string
		dep, arr, duration string
	}{
		{"12734", "NLR", "SC", "21:35", "08:30", "10h 55m"},
		{"12259", "NDLS", "SDAH", "19:15", "12:30", "17h 15m"},
		{"12301", "NDLS", "HWH", "16:55", "09:55", "17h 0m"},
		{"12733", "SC", "LPI", "20:30", "20:56", "0h 26m"},
	}
	for _, tt := range tests {
		lookup, ok := r.Resolve(context.Background(), tt.train, tt.from, tt.to)
		if !ok {
			t.Errorf("%s %s-%s: no result", tt.train, tt.from, tt.to)
			continue
		}
		if lookup.DepartureTime != tt.dep || lookup.ArrivalTime != tt.arr || lookup.Duration != tt.duration {
			t.Errorf("%s %s-%s = %s/%s/%s, want %s/%s/%s", tt.train, tt.from, tt.to,
				lookup.DepartureTime, lookup.ArrivalTime, lookup.Duration, tt.dep, tt.arr, tt.duration)
		}
	}
}

func TestResolveStaticMissingStationFallsThrough(t *testing.T) {
	api := &fakeAPI{result: entity.ScheduleFetch{Outcome: entity.FetchError, Err: errors.New("boom")}}
	r := NewResolver(logger.NewNopLogger(), WithNetwork(api, time.Second))

	if _, ok := r.Resolve(context.Background(), "12733", "NLR", "LPI"); ok {
		t.Fatal("expected no result")
	}
	if api.calls != 1 {
		t.Errorf("network calls = %d, want 1", api.calls)
	}
}

func TestResolveWrongDirection(t *testing.T) {
	r := NewResolver(logger.NewNopLogger())
	if _, ok := r.Resolve(context.Background(), "12733", "TPTY", "SC"); ok {
		t.Error("reverse segment should not resolve")
	}
}

func TestResolveNetworkAndCache(t *testing.T) {
	api := &fakeAPI{result: entity.ScheduleFetch{Outcome: entity.FetchSuccess, Schedule: remoteSchedule}}
	cache := newFakeCache()
	r := NewResolver(logger.NewNopLogger(), WithCache(cache), WithNetwork(api, 2*time.Second))

	lookup, ok := r.Resolve(context.Background(), "12785", "KCG", "SBC")
	if !ok {
		t.Fatal("expected a network result")
	}
	if lookup.Source != metrics.SourceNetwork || lookup.Duration != "11h 50m" {
		t.Errorf("lookup = %+v", lookup)
	}
	if !api.deadline {
		t.Error("network call should carry a deadline")
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}

	lookup, ok = r.Resolve(context.Background(), "12785", "KRNT", "SBC")
	if !ok || lookup.Source != metrics.SourceCache {
		t.Fatalf("second lookup = %+v, %v; want cache hit", lookup, ok)
	}
	if api.calls != 1 {
		t.Errorf("network calls = %d, want 1", api.calls)
	}
}

func TestResolveDatabaseBeforeNetwork(t *testing.T) {
	api := &fakeAPI{}
	db := &fakeDB{schedules: map[string]*entity.TrainSchedule{"12785": remoteSchedule}}
	r := NewResolver(logger.NewNopLogger(), WithDatabase(db), WithNetwork(api, time.Second))

	lookup, ok := r.Resolve(context.Background(), "12785", "KCG", "KRNT")
	if !ok || lookup.Source != metrics.SourceDB {
		t.Fatalf("lookup = %+v, %v; want database hit", lookup, ok)
	}
	if lookup.Duration != "4h 43m" {
		t.Errorf("duration = %s", lookup.Duration)
	}
	if api.calls != 0 {
		t.Errorf("network calls = %d, want 0", api.calls)
	}
}

func TestResolveDatabaseErrorIsSwallowed(t *testing.T) {
	api := &fakeAPI{result: entity.ScheduleFetch{Outcome: entity.FetchTimeout, Err: context.DeadlineExceeded}}
	r := NewResolver(logger.NewNopLogger(),
		WithDatabase(&fakeDB{err: errors.New("connection refused")}),
		WithNetwork(api, time.Second))

	if _, ok := r.Resolve(context.Background(), "12785", "KCG", "SBC"); ok {
		t.Fatal("expected no result")
	}
	if api.calls != 1 {
		t.Errorf("network calls = %d, want 1", api.calls)
	}
}

func TestResolveWithoutTrainNumberSkipsNetwork(t *testing.T) {
	api := &fakeAPI{}
	r := NewResolver(logger.NewNopLogger(), WithNetwork(api, time.Second))

	if _, ok := r.Resolve(context.Background(), "", "SC", "TPTY"); ok {
		t.Fatal("expected no result")
	}
	if api.calls != 0 {
		t.Errorf("network calls = %d, want 0", api.calls)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		dep, arr       string
		depDay, arrDay int
		want           string
		ok             bool
	}{
		{"20:30", "07:35", 1, 2, "11h 5m", true},
		{"20:30", "07:35", 1, 1, "11h 5m", true},
		{"08:00 PM", "6:15 AM", 1, 2, "10h 15m", true},
		{"10:00", "10:00", 1, 3, "48h 0m", true},
		{"--", "07:35", 1, 2, "", false},
		{"25:00", "07:35", 1, 2, "", false},
		{"", "", 1, 1, "", false},
	}
	for _, tt := range tests {
		got, ok := Duration(tt.dep, tt.arr, tt.depDay, tt.arrDay)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Duration(%q, %q, %d, %d) = %q, %v; want %q, %v",
				tt.dep, tt.arr, tt.depDay, tt.arrDay, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSegmentTerminusTimesAreEmpty(t *testing.T) {
	s, _ := StaticSchedule("12733")
	lookup, ok := Segment(s, "SC", "TPTY")
	if !ok {
		t.Fatal("expected a segment")
	}
	if lookup.DepartureTime == noTime || lookup.ArrivalTime == noTime {
		t.Errorf("placeholder leaked: %+v", lookup)
	}
}

func TestCommonTrainName(t *testing.T) {
	if name, ok := CommonTrainName("12616"); !ok || name != "GRAND TRUNK EXP" {
		t.Errorf("12616 = %q, %v", name, ok)
	}
	if _, ok := CommonTrainName("00000"); ok {
		t.Error("unknown train should not resolve")
	}
	if len(StaticTrainNumbers()) != 4 {
		t.Errorf("static trains = %d, want 4", len(StaticTrainNumbers()))
	}
}
