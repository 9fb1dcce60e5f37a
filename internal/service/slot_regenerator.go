package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/staff_availability/internal/model"
	"go.uber.org/zap"
)

// SlotRegenerator заменяет слоты записи доступности блоками шаблона.
// Замена полная: старые слоты удаляются без сравнения с новыми.
type SlotRegenerator struct {
	logger *zap.Logger
}

func NewSlotRegenerator(logger *zap.Logger) *SlotRegenerator {
	return &SlotRegenerator{logger: logger}
}

// Regenerate удаляет все слоты записи, создаёт по слоту на каждый блок шаблона
// в порядке шаблона и сохраняет запись. Возвращает новые слоты и число удалённых.
//
// Границы записи (StartTime, EndTime) всегда перезаписываются границами шаблона,
// в том числе у записи, найденной Resolve: после применения запись описывает
// последний применённый шаблон.
func (g *SlotRegenerator) Regenerate(
	ctx context.Context,
	stores Stores,
	availability *model.Availability,
	template *model.HourTemplate,
) ([]*model.TimeSlot, int64, error) {
	// TODO: решить с продуктом, должны ли забронированные слоты блокировать перегенерацию
	reserved, err := stores.TimeSlots.CountReservedByAvailability(ctx, availability.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if reserved > 0 {
		g.logger.Warn("Discarding reserved time slots",
			zap.Int64("availability_id", availability.ID),
			zap.String("date", availability.DateString()),
			zap.Int64("reserved", reserved))
	}

	deleted, err := stores.TimeSlots.DeleteByAvailability(ctx, availability.ID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	slots := make([]*model.TimeSlot, 0, len(template.Blocks))
	availability.Slots = slots

	for i, block := range template.Blocks {
		slot := &model.TimeSlot{
			AvailabilityID: availability.ID,
			HourBlockID:    block.ID,
			Position:       i,
			StartTime:      block.StartTime,
			EndTime:        block.EndTime,
		}

		if err := stores.TimeSlots.Create(ctx, slot); err != nil {
			return nil, deleted, fmt.Errorf("%w: block %d: %w", ErrPersistence, block.ID, err)
		}

		slots = append(slots, slot)
		availability.Slots = slots
	}

	availability.StartTime = template.StartTime
	availability.EndTime = template.EndTime

	if err := stores.Availabilities.Update(ctx, availability); err != nil {
		return nil, deleted, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	g.logger.Debug("Time slots regenerated",
		zap.Int64("availability_id", availability.ID),
		zap.Int64("deleted", deleted),
		zap.Int("created", len(slots)))

	return slots, deleted, nil
}
