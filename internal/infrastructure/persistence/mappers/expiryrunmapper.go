package mappers

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/echomag/echomag/internal/domain/expiry"
	"github.com/echomag/echomag/internal/infrastructure/persistence/models"
)

type ExpiryRunMapper interface {
	ToEntity(model *models.ExpiryRunModel) (*expiry.Run, error)
	ToModel(entity *expiry.Run) (*models.ExpiryRunModel, error)
	ToEntities(models []*models.ExpiryRunModel) ([]*expiry.Run, error)
}

type ExpiryRunMapperImpl struct{}

func NewExpiryRunMapper() ExpiryRunMapper {
	return &ExpiryRunMapperImpl{}
}

func (m *ExpiryRunMapperImpl) ToEntity(model *models.ExpiryRunModel) (*expiry.Run, error) {
	if model == nil {
		return nil, nil
	}

	var perTier map[string]int
	if len(model.PerTier) > 0 {
		if err := json.Unmarshal(model.PerTier, &perTier); err != nil {
			return nil, fmt.Errorf("failed to unmarshal per tier counts: %w", err)
		}
	}

	var failures []expiry.Failure
	if len(model.Failures) > 0 {
		if err := json.Unmarshal(model.Failures, &failures); err != nil {
			return nil, fmt.Errorf("failed to unmarshal failures: %w", err)
		}
	}

	return expiry.ReconstructRun(
		model.RunID,
		expiry.Trigger(model.Trigger),
		model.StartedAt,
		model.FinishedAt,
		model.Success,
		model.Message,
		expiry.Counts{
			Candidates: model.Candidates,
			Succeeded:  model.Succeeded,
			Failed:     model.Failed,
			Skipped:    model.Skipped,
			PerTier:    perTier,
		},
		failures,
		model.Error,
	)
}

func (m *ExpiryRunMapperImpl) ToModel(entity *expiry.Run) (*models.ExpiryRunModel, error) {
	if entity == nil {
		return nil, nil
	}

	counts := entity.Counts()
	perTier, err := json.Marshal(counts.PerTier)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal per tier counts: %w", err)
	}

	failures := entity.Failures()
	if failures == nil {
		failures = []expiry.Failure{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal failures: %w", err)
	}

	return &models.ExpiryRunModel{
		RunID:      entity.ID(),
		Trigger:    string(entity.Trigger()),
		StartedAt:  entity.StartedAt(),
		FinishedAt: entity.FinishedAt(),
		Success:    entity.Success(),
		Message:    entity.Message(),
		Candidates: counts.Candidates,
		Succeeded:  counts.Succeeded,
		Failed:     counts.Failed,
		Skipped:    counts.Skipped,
		PerTier:    datatypes.JSON(perTier),
		Failures:   datatypes.JSON(failuresJSON),
		Error:      entity.ErrorMessage(),
	}, nil
}

func (m *ExpiryRunMapperImpl) ToEntities(models []*models.ExpiryRunModel) ([]*expiry.Run, error) {
	entities := make([]*expiry.Run, 0, len(models))
	for _, model := range models {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
