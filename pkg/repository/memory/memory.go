package memory

import (
	"errors"

	"github.com/exportin-lab/exportin/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is an in-memory implementation of interfaces.Repository, used for
// tests and local development.
type Memory struct {
	template  *templateRepository
	commodity *commodityRepository
	currency  *currencyRepository
	tariff    *tariffRepository
}

var _ interfaces.Repository = &Memory{}

// New creates an empty in-memory repository
func New() *Memory {
	return &Memory{
		template:  newTemplateRepository(),
		commodity: newCommodityRepository(),
		currency:  newCurrencyRepository(),
		tariff:    newTariffRepository(),
	}
}

func (m *Memory) Template() interfaces.TemplateRepository {
	return m.template
}

func (m *Memory) Commodity() interfaces.CommodityRepository {
	return m.commodity
}

func (m *Memory) Currency() interfaces.CurrencyRepository {
	return m.currency
}

func (m *Memory) Tariff() interfaces.TariffRepository {
	return m.tariff
}

func (m *Memory) Close() error {
	return nil
}
