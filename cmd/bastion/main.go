package main

import (
	"github.com/smallbiznis/bastion/internal/config"
	"github.com/smallbiznis/bastion/internal/logger"
	"github.com/smallbiznis/bastion/internal/migration"
	"github.com/smallbiznis/bastion/internal/node"
	"github.com/smallbiznis/bastion/internal/organization"
	orgdomain "github.com/smallbiznis/bastion/internal/organization/domain"
	"github.com/smallbiznis/bastion/internal/organization/registry"
	"github.com/smallbiznis/bastion/internal/perm"
	"github.com/smallbiznis/bastion/internal/user"
	"github.com/smallbiznis/bastion/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		db.Module,
		migration.Module,

		// Functional domains
		user.Module,
		perm.Module,
		node.Module,
		organization.Module,

		// Force construction of the organization surfaces even though no
		// transport consumes them yet.
		fx.Invoke(func(log *zap.Logger, cfg config.Config, _ orgdomain.Service, _ *registry.Registry) {
			log.Info("bastion organization core ready",
				zap.String("service", cfg.AppName),
				zap.String("version", cfg.AppVersion),
			)
		}),
	)
	app.Run()
}
