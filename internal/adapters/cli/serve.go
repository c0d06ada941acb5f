package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cosmicverge/tickengine/internal/adapters/oauth"
	"github.com/cosmicverge/tickengine/internal/adapters/persistence"
	"github.com/cosmicverge/tickengine/internal/adapters/ws"
	"github.com/cosmicverge/tickengine/internal/application/auth"
	"github.com/cosmicverge/tickengine/internal/application/cache"
	"github.com/cosmicverge/tickengine/internal/application/common"
	"github.com/cosmicverge/tickengine/internal/application/session"
	"github.com/cosmicverge/tickengine/internal/application/tick"
	"github.com/cosmicverge/tickengine/internal/domain/hangar"
	"github.com/cosmicverge/tickengine/internal/domain/shared"
	"github.com/cosmicverge/tickengine/internal/domain/universe"
	"github.com/cosmicverge/tickengine/internal/infrastructure/config"
	"github.com/cosmicverge/tickengine/internal/infrastructure/database"
	"github.com/cosmicverge/tickengine/internal/infrastructure/logging"
	"github.com/cosmicverge/tickengine/internal/infrastructure/store"
)

const presenceActivityBuffer = 1024

// NewServeCommand creates the serve command: it wires every collaborator
// the tick engine needs and blocks until an interrupt signal arrives.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tick engine and websocket session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting to database", "type", cfg.Database.Type)
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("connecting to coordination store", "url", cfg.Store.URL)
	coordStore, err := store.New(store.Options{URL: cfg.Store.URL})
	if err != nil {
		return fmt.Errorf("failed to connect to coordination store: %w", err)
	}
	defer coordStore.Close()
	if err := coordStore.Healthy(ctx); err != nil {
		return fmt.Errorf("coordination store health check failed: %w", err)
	}

	logger.Info("loading universe description", "path", cfg.Universe.DescriptionPath)
	uni, err := universe.Load(cfg.Universe.DescriptionPath)
	if err != nil {
		return fmt.Errorf("failed to load universe: %w", err)
	}

	specs, err := hangar.Load(cfg.Universe.DescriptionPath)
	if err != nil {
		return fmt.Errorf("failed to load hangar table: %w", err)
	}

	locationCache := cache.New(logger)
	if err := locationCache.Refresh(ctx, coordStore); err != nil {
		return fmt.Errorf("failed to prime location cache: %w", err)
	}

	pilots := persistence.NewGormPilotStore(db)
	installations := persistence.NewGormInstallationStore(db)
	urls := oauth.NewTwitchURLBuilder(cfg.OAuth.ClientID, cfg.OAuth.RedirectURI)

	med := common.NewMediator()
	med.RegisterMiddleware(session.NewRateLimiter().Middleware)

	manager := session.NewManager()
	broadcaster := session.NewBroadcaster(manager, locationCache, pilots, installations, logger)

	if err := common.RegisterHandler[session.SelectPilotRequest](med, session.NewSelectPilotHandler(pilots, locationCache)); err != nil {
		return fmt.Errorf("failed to register SelectPilot handler: %w", err)
	}
	if err := common.RegisterHandler[session.CreatePilotRequest](med, session.NewCreatePilotHandler(pilots)); err != nil {
		return fmt.Errorf("failed to register CreatePilot handler: %w", err)
	}
	if err := common.RegisterHandler[session.FlyRequest](med, session.NewFlyHandler(coordStore)); err != nil {
		return fmt.Errorf("failed to register Fly handler: %w", err)
	}
	if err := common.RegisterHandler[session.GetPilotInformationRequest](med, session.NewGetPilotInformationHandler(pilots)); err != nil {
		return fmt.Errorf("failed to register GetPilotInformation handler: %w", err)
	}
	if err := common.RegisterHandler[auth.AuthenticationURLRequest](med, auth.NewAuthenticationURLHandler(installations, urls)); err != nil {
		return fmt.Errorf("failed to register AuthenticationUrl handler: %w", err)
	}

	clock := shared.NewRealClock()
	scheduler := tick.NewScheduler(coordStore, uni, logger)
	worker := tick.NewWorker(coordStore, locationCache, uni, specs, logger)
	presence := tick.NewPresenceManager(coordStore, logger, clock, presenceActivityBuffer)

	tickMessages := make(chan string, 1)
	pubsubRouter := ws.NewPubSubRouter(coordStore, broadcaster, logger)
	wsServer := ws.NewServer(med, manager, cfg.Session.ProtocolVersion, logger)

	httpServer := &http.Server{
		Addr:    cfg.Session.Address,
		Handler: wsServer.Handler(),
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return scheduler.Run(groupCtx, clock)
	})
	group.Go(func() error {
		return worker.Run(groupCtx, tickMessages)
	})
	group.Go(func() error {
		return forwardTickMessages(groupCtx, coordStore, tickMessages)
	})
	group.Go(func() error {
		return presence.Run(groupCtx, clock)
	})
	group.Go(func() error {
		return pubsubRouter.Run(groupCtx)
	})
	group.Go(func() error {
		logger.Info("websocket server listening", "address", cfg.Session.Address)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("websocket server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		presence.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	logger.Info("cosmic verge tick engine is ready")
	if err := group.Wait(); err != nil && groupCtx.Err() == nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

// forwardTickMessages subscribes to the scheduler's systems_ready_to_process
// channel and relays each payload to the worker's inbound channel, so the
// worker never imports the coordination store's pub/sub primitives itself.
func forwardTickMessages(ctx context.Context, coordStore *store.Client, out chan<- string) error {
	defer close(out)

	pubsub := coordStore.Subscribe(ctx, store.ChannelSystemsReadyToProcess)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return nil
			}
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
