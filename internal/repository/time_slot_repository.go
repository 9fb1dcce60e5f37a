package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/staff_availability/internal/model"
	"github.com/Freeeeeet/staff_availability/internal/repository/base"
)

type TimeSlotRepository struct {
	db base.DBTX
}

func NewTimeSlotRepository(db base.DBTX) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// Create создаёт новый слот
func (r *TimeSlotRepository) Create(ctx context.Context, slot *model.TimeSlot) error {
	query := `
		INSERT INTO time_slots (availability_id, hour_block_id, position)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		slot.AvailabilityID,
		slot.HourBlockID,
		slot.Position,
	).Scan(&slot.ID, &slot.CreatedAt)

	if err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}

	return nil
}

// GetByAvailabilityID получает слоты записи доступности по порядку
func (r *TimeSlotRepository) GetByAvailabilityID(ctx context.Context, availabilityID int64) ([]*model.TimeSlot, error) {
	query := `
		SELECT s.id, s.availability_id, s.hour_block_id, s.position,
		       to_char(b.start_time, 'HH24:MI'), to_char(b.end_time, 'HH24:MI'),
		       s.reservation_id, s.created_at
		FROM time_slots s
		JOIN hour_blocks b ON b.id = s.hour_block_id
		WHERE s.availability_id = $1
		ORDER BY s.position, s.id
	`

	rows, err := r.db.Query(ctx, query, availabilityID)
	if err != nil {
		return nil, fmt.Errorf("get time slots by availability: %w", err)
	}
	defer rows.Close()

	var slots []*model.TimeSlot
	for rows.Next() {
		var slot model.TimeSlot
		err := rows.Scan(
			&slot.ID,
			&slot.AvailabilityID,
			&slot.HourBlockID,
			&slot.Position,
			&slot.StartTime,
			&slot.EndTime,
			&slot.ReservationID,
			&slot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan time slot: %w", err)
		}
		slots = append(slots, &slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time slots: %w", err)
	}

	return slots, nil
}

// CountReservedByAvailability считает слоты, уже занятые бронированием
func (r *TimeSlotRepository) CountReservedByAvailability(ctx context.Context, availabilityID int64) (int64, error) {
	query := `
		SELECT COUNT(*) FROM time_slots
		WHERE availability_id = $1 AND reservation_id IS NOT NULL
	`

	var count int64
	err := r.db.QueryRow(ctx, query, availabilityID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reserved time slots: %w", err)
	}

	return count, nil
}

// DeleteByAvailability удаляет все слоты записи доступности и возвращает их количество
func (r *TimeSlotRepository) DeleteByAvailability(ctx context.Context, availabilityID int64) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM time_slots WHERE availability_id = $1`, availabilityID)
	if err != nil {
		return 0, fmt.Errorf("delete time slots: %w", err)
	}

	return result.RowsAffected(), nil
}
