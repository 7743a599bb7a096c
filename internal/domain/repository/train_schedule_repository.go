package repository

import (
	"context"

	"railmail-service/internal/domain/entity"
)

// TrainScheduleRepository reads timetables from the reference database
type TrainScheduleRepository interface {
	GetByTrainNumber(ctx context.Context, trainNumber string) (*entity.TrainSchedule, error)
}

// ScheduleCache keeps timetables fetched from the network
type ScheduleCache interface {
	Get(ctx context.Context, trainNumber string) (*entity.TrainSchedule, error)
	Set(ctx context.Context, schedule *entity.TrainSchedule) error
}

// ScheduleAPI fetches a timetable from a remote service
type ScheduleAPI interface {
	FetchSchedule(ctx context.Context, trainNumber string) entity.ScheduleFetch
}
