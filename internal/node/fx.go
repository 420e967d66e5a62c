package node

import (
	"github.com/smallbiznis/bastion/internal/node/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("node",
	fx.Provide(repository.NewRepository),
)
