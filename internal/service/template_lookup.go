package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/staff_availability/internal/model"
	"go.uber.org/zap"
)

// TemplateLookup находит шаблон рабочего дня и проверяет его
type TemplateLookup struct {
	templates TemplateFinder
	logger    *zap.Logger
}

func NewTemplateLookup(templates TemplateFinder, logger *zap.Logger) *TemplateLookup {
	return &TemplateLookup{
		templates: templates,
		logger:    logger,
	}
}

// Lookup возвращает шаблон по ID. Шаблон только читается.
func (l *TemplateLookup) Lookup(ctx context.Context, templateID int64) (*model.HourTemplate, error) {
	template, err := l.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("%w: get template %d: %w", ErrPersistence, templateID, err)
	}

	if template == nil {
		l.logger.Warn("Template not found", zap.Int64("template_id", templateID))
		return nil, fmt.Errorf("%w: id %d", ErrTemplateNotFound, templateID)
	}

	if err := template.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	l.logger.Debug("Template resolved",
		zap.Int64("template_id", template.ID),
		zap.String("start_time", template.StartTime),
		zap.String("end_time", template.EndTime),
		zap.Int("blocks", len(template.Blocks)),
	)

	return template, nil
}
