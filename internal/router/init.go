package router

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edu-verify/config"
	"github.com/oksasatya/edu-verify/internal/application"
	"github.com/oksasatya/edu-verify/internal/container"
	"github.com/oksasatya/edu-verify/internal/infrastructure/elastic"
	"github.com/oksasatya/edu-verify/internal/infrastructure/memory"
	"github.com/oksasatya/edu-verify/internal/infrastructure/notifier"
	pginfra "github.com/oksasatya/edu-verify/internal/infrastructure/postgres"
	"github.com/oksasatya/edu-verify/internal/infrastructure/redisstore"
	handlers "github.com/oksasatya/edu-verify/internal/interface/http"
	"github.com/oksasatya/edu-verify/internal/router/modules"
	"github.com/oksasatya/edu-verify/pkg/helpers"
)

type VerificationModuleDeps struct {
	Service             *application.Service
	VerificationHandler *handlers.VerificationHandler
	IdentityHandler     *handlers.IdentityHandler
}

func buildNotifier(cfg *config.Config, logger *logrus.Logger) (application.Notifier, error) {
	if !cfg.MailSendEnabled {
		return notifier.NewLog(logger), nil
	}
	switch cfg.Notifier {
	case config.NotifierMailgun:
		return notifier.NewMailgun(container.GetMailgun(), cfg)
	case config.NotifierLog:
		return notifier.NewLog(logger), nil
	default:
		var pub notifier.Publisher
		if p := container.GetRabbitPub(); p != nil {
			pub = p
		}
		return notifier.NewQueue(pub, cfg, logger), nil
	}
}

// BuildService assembles the flows from whatever infrastructure the container holds.
func BuildService() (*application.Service, error) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	n, err := buildNotifier(cfg, logger)
	if err != nil {
		return nil, err
	}

	var tickets application.TicketStore = memory.NewTicketStore()
	if rdb := container.GetRedis(); rdb != nil {
		tickets = redisstore.NewTicketStore(rdb)
	}

	settings := application.Settings{
		DomainSuffix: cfg.EmailDomainSuffix,
		CodeTTL:      cfg.VerificationCodeTTL,
		TicketTTL:    cfg.InteractiveTicketTTL,
	}

	pool := container.GetPGPool()
	if cfg.StoreDriver == config.StoreDriverMemory || pool == nil {
		if logger != nil {
			logger.Warn("using in-memory identity store; data is lost on restart")
		}
		svc := application.NewService(memory.NewIdentityRepository(), n, tickets, logger, settings)
		attachDirectory(svc, cfg)
		return svc, nil
	}

	svc := application.NewService(pginfra.NewIdentityRepository(pool), n, tickets, logger, settings)
	svc.Stats = pginfra.NewProjectStatsRepository(pool)
	svc.Audit = pginfra.NewAuditLog(pool)
	attachDirectory(svc, cfg)
	return svc, nil
}

func attachDirectory(svc *application.Service, cfg *config.Config) {
	if es := container.GetES(); es != nil && cfg.DirectoryEnabled {
		svc.Directory = elastic.NewDirectory(es, cfg.ESMembersIndex)
	}
}

func buildVerificationDeps() (VerificationModuleDeps, error) {
	svc, err := BuildService()
	if err != nil {
		return VerificationModuleDeps{}, err
	}
	logger := container.GetLogger()
	return VerificationModuleDeps{
		Service:             svc,
		VerificationHandler: handlers.NewVerificationHandler(svc, logger),
		IdentityHandler:     handlers.NewIdentityHandler(svc, logger),
	}, nil
}

func healthChecks() map[string]modules.Pinger {
	checks := map[string]modules.Pinger{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	if es := container.GetES(); es != nil {
		checks["elasticsearch"] = func(ctx context.Context) error { return helpers.ESPing(ctx, es) }
	}
	return checks
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) error {
	deps, err := buildVerificationDeps()
	if err != nil {
		return err
	}
	tokens := container.GetServiceTokens()

	r.Add(modules.NewHealthModule(healthChecks()))
	r.Add(modules.NewVerificationModule(deps.VerificationHandler, tokens))
	r.Add(modules.NewIdentityModule(deps.IdentityHandler, tokens))
	if cfg := container.GetConfig(); cfg != nil && cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(tokens))
	}
	return nil
}
