package mappers

import (
	"fmt"

	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/infrastructure/persistence/models"
)

type AccountMapper interface {
	ToEntity(model *models.AccountModel) (*account.Account, error)
	ToEntities(models []*models.AccountModel) ([]*account.Account, error)
}

type AccountMapperImpl struct{}

func NewAccountMapper() AccountMapper {
	return &AccountMapperImpl{}
}

func (m *AccountMapperImpl) ToEntity(model *models.AccountModel) (*account.Account, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := account.ReconstructAccount(
		model.UID,
		model.Username,
		model.Email,
		account.UserType(model.UserType),
		account.Plan(model.Plan),
		model.PlanStart,
		model.PlanExpiry,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct account %d: %w", model.UID, err)
	}
	return entity, nil
}

func (m *AccountMapperImpl) ToEntities(models []*models.AccountModel) ([]*account.Account, error) {
	entities := make([]*account.Account, 0, len(models))
	for _, model := range models {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
