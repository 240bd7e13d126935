package mappers

import (
	"fmt"

	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/domain/payment"
	"github.com/echomag/echomag/internal/infrastructure/persistence/models"
)

type PaymentMapper interface {
	ToEntity(model *models.PaymentModel) (*payment.Payment, error)
	ToEntities(models []*models.PaymentModel) ([]*payment.Payment, error)
}

type PaymentMapperImpl struct{}

func NewPaymentMapper() PaymentMapper {
	return &PaymentMapperImpl{}
}

func (m *PaymentMapperImpl) ToEntity(model *models.PaymentModel) (*payment.Payment, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := payment.ReconstructPayment(
		model.PaymentID,
		model.UserID,
		account.Plan(model.PlanType),
		model.Amount,
		model.Currency,
		payment.Status(model.Status),
		model.RefundAmount,
		model.CompletedAt,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct payment %s: %w", model.PaymentID, err)
	}
	return entity, nil
}

func (m *PaymentMapperImpl) ToEntities(models []*models.PaymentModel) ([]*payment.Payment, error) {
	entities := make([]*payment.Payment, 0, len(models))
	for _, model := range models {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
