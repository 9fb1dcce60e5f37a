package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/staff_availability/internal/model"
	"github.com/Freeeeeet/staff_availability/internal/repository/base"
)

// HourTemplateRepository читает шаблоны рабочего дня вместе с блоками
type HourTemplateRepository struct {
	db base.DBTX
}

// NewHourTemplateRepository создаёт новый репозиторий
func NewHourTemplateRepository(db base.DBTX) *HourTemplateRepository {
	return &HourTemplateRepository{db: db}
}

// GetByID получает шаблон по ID, блоки упорядочены по position
func (r *HourTemplateRepository) GetByID(ctx context.Context, id int64) (*model.HourTemplate, error) {
	query := `
		SELECT id, name, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), created_at
		FROM hour_templates
		WHERE id = $1
	`

	template := &model.HourTemplate{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&template.ID,
		&template.Name,
		&template.StartTime,
		&template.EndTime,
		&template.CreatedAt,
	)

	if base.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get hour template by id: %w", err)
	}

	blocks, err := r.getBlocks(ctx, id)
	if err != nil {
		return nil, err
	}
	template.Blocks = blocks

	return template, nil
}

func (r *HourTemplateRepository) getBlocks(ctx context.Context, templateID int64) ([]model.HourBlock, error) {
	query := `
		SELECT id, template_id, position, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI')
		FROM hour_blocks
		WHERE template_id = $1
		ORDER BY position, id
	`

	rows, err := r.db.Query(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("get hour blocks: %w", err)
	}
	defer rows.Close()

	var blocks []model.HourBlock
	for rows.Next() {
		var block model.HourBlock
		err := rows.Scan(
			&block.ID,
			&block.TemplateID,
			&block.Position,
			&block.StartTime,
			&block.EndTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan hour block: %w", err)
		}
		blocks = append(blocks, block)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hour blocks: %w", err)
	}

	return blocks, nil
}
