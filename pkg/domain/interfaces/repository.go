package interfaces

// Repository defines the interface for data persistence and reference data
type Repository interface {
	Template() TemplateRepository
	Commodity() CommodityRepository
	Currency() CurrencyRepository
	Tariff() TariffRepository

	Close() error
}
