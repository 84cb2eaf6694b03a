package sale

import (
	"github.com/devstorehq/sales-service/internal/sale/repository"
	"github.com/devstorehq/sales-service/internal/sale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sale.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
