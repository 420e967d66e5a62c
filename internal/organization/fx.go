package organization

import (
	"github.com/smallbiznis/bastion/internal/organization/registry"
	"github.com/smallbiznis/bastion/internal/organization/repository"
	"github.com/smallbiznis/bastion/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization",
	fx.Provide(repository.NewRepository),
	fx.Provide(registry.New),
	fx.Provide(service.NewService),
)
