package railapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/domain/repository"
	"railmail-service/pkg/logger"
)

// DefaultBaseURL is the public Indian Railways schedule API
const DefaultBaseURL = "https://indian-railway-api.cyclic.app"

// maxBodyBytes caps the schedule payload read from the remote service
const maxBodyBytes = 1 << 20

// Client fetches train timetables over HTTP
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Logger
}

var _ repository.ScheduleAPI = (*Client)(nil)

// NewClient creates a schedule API client. Every request is abandoned
// after timeout.
func NewClient(baseURL string, timeout time.Duration, logger logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With("component", "railapi"),
	}
}

// FetchSchedule requests the timetable of a train. It never returns a Go
// error; failures are reported through the result outcome.
func (c *Client) FetchSchedule(ctx context.Context, trainNumber string) entity.ScheduleFetch {
	schedule, err := c.fetch(ctx, trainNumber)
	switch {
	case err == nil:
		return entity.ScheduleFetch{Outcome: entity.FetchSuccess, Schedule: schedule}
	case isTimeout(err):
		return entity.ScheduleFetch{Outcome: entity.FetchTimeout, Err: err}
	default:
		return entity.ScheduleFetch{Outcome: entity.FetchError, Err: err}
	}
}

func (c *Client) fetch(ctx context.Context, trainNumber string) (*entity.TrainSchedule, error) {
	endpoint := fmt.Sprintf("%s/trains/getSchedule/%s", c.baseURL, url.PathEscape(trainNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Fetching train schedule", "trainNumber", trainNumber, "url", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var payload schedulePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	schedule := payload.toSchedule(trainNumber)
	if len(schedule.Stops) == 0 {
		return nil, errors.New("schedule has no stations")
	}

	c.logger.Debug("Fetched train schedule", "trainNumber", trainNumber, "stops", len(schedule.Stops))
	return schedule, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// schedulePayload accepts both camelCase and snake_case keys
type schedulePayload struct {
	TrainName      string        `json:"trainName"`
	TrainNameSnake string        `json:"train_name"`
	Schedule       []stationItem `json:"schedule"`
}

type stationItem struct {
	StationCode      string      `json:"stationCode"`
	StationCodeSnake string      `json:"station_code"`
	StationName      string      `json:"stationName"`
	StationNameSnake string      `json:"station_name"`
	DepartureTime    string      `json:"departureTime"`
	Departure        string      `json:"departure"`
	ArrivalTime      string      `json:"arrivalTime"`
	Arrival          string      `json:"arrival"`
	Day              flexibleInt `json:"day"`
}

func (p schedulePayload) toSchedule(trainNumber string) *entity.TrainSchedule {
	s := &entity.TrainSchedule{
		TrainNumber: trainNumber,
		TrainName:   firstNonEmpty(p.TrainName, p.TrainNameSnake),
	}
	for _, item := range p.Schedule {
		code := strings.ToUpper(strings.TrimSpace(firstNonEmpty(item.StationCode, item.StationCodeSnake)))
		if code == "" {
			continue
		}
		day := int(item.Day)
		if day < 1 {
			day = 1
		}
		s.Stops = append(s.Stops, entity.StationStop{
			Code:          code,
			Name:          firstNonEmpty(item.StationName, item.StationNameSnake),
			DepartureTime: firstNonEmpty(item.DepartureTime, item.Departure),
			ArrivalTime:   firstNonEmpty(item.ArrivalTime, item.Arrival),
			Day:           day,
		})
	}
	return s
}

// flexibleInt decodes 2, "2" and null
type flexibleInt int

func (f *flexibleInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexibleInt(n)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
