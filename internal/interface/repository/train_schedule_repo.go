package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormTrainScheduleRepository implements the TrainScheduleRepository interface
// on the reference timetable tables
type GormTrainScheduleRepository struct {
	db *gorm.DB
}

// NewGormTrainScheduleRepository creates a new GORM train schedule repository
func NewGormTrainScheduleRepository(db *gorm.DB) repository.TrainScheduleRepository {
	return &GormTrainScheduleRepository{
		db: db,
	}
}

// Trains GORM model for database mapping
type Trains struct {
	ID        uint           `gorm:"primaryKey"`
	Number    string         `gorm:"column:number;unique"`
	Name      string         `gorm:"column:name"`
	Stops     []TrainStops   `gorm:"foreignKey:TrainID"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Trains) TableName() string {
	return "m_trains"
}

// TrainStops GORM model for one station on a train's route
type TrainStops struct {
	ID            uint   `gorm:"primaryKey"`
	TrainID       uint   `gorm:"column:train_id;index"`
	Sequence      int    `gorm:"column:sequence"`
	StationCode   string `gorm:"column:station_code"`
	StationName   string `gorm:"column:station_name"`
	ArrivalTime   string `gorm:"column:arrival_time"`
	DepartureTime string `gorm:"column:departure_time"`
	Day           int    `gorm:"column:day"`
}

// TableName overrides the default table name
func (TrainStops) TableName() string {
	return "m_train_stops"
}

// GetByTrainNumber loads a train with its stops in route order
func (r *GormTrainScheduleRepository) GetByTrainNumber(ctx context.Context, trainNumber string) (*entity.TrainSchedule, error) {
	var train Trains
	result := r.db.WithContext(ctx).
		Preload("Stops", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("number = ?", trainNumber).
		First(&train)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load train %s: %w", trainNumber, result.Error)
	}

	// Convert GORM model to domain entity
	schedule := &entity.TrainSchedule{
		TrainNumber: train.Number,
		TrainName:   train.Name,
		Stops:       make([]entity.StationStop, 0, len(train.Stops)),
	}
	for _, stop := range train.Stops {
		day := stop.Day
		if day < 1 {
			day = 1
		}
		schedule.Stops = append(schedule.Stops, entity.StationStop{
			Code:          stop.StationCode,
			Name:          stop.StationName,
			ArrivalTime:   stop.ArrivalTime,
			DepartureTime: stop.DepartureTime,
			Day:           day,
		})
	}

	return schedule, nil
}
