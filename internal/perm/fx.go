package perm

import (
	"github.com/smallbiznis/bastion/internal/perm/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("perm",
	fx.Provide(repository.NewRepository),
)
