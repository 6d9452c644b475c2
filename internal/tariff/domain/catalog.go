package tariff

import "context"

// Catalog resolves published tariff definitions. The authoritative
// sourcing of schedules from provider publications sits behind this
// interface; the core only consumes definitions by code.
type Catalog interface {
	TariffByCode(ctx context.Context, code string) (*TariffDefinition, error)
	ListTariffs(ctx context.Context, provider string, tariffType Type) ([]*TariffDefinition, error)
}
