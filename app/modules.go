package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grafana/dskit/modules"
	"github.com/grafana/dskit/server"
	"github.com/grafana/dskit/services"
	"github.com/pkg/errors"

	"github.com/zachfi/adtsinfo/modules/inspector"
)

const (
	Server string = "server"

	Inspector string = "inspector"
	HTTPAPI   string = "http-api"

	All string = "all"
)

func (a *App) setupModuleManager() error {
	mm := modules.NewManager(a.kitLogger)
	mm.RegisterModule(Server, a.initServer, modules.UserInvisibleModule)

	mm.RegisterModule(Inspector, a.initInspector)
	mm.RegisterModule(HTTPAPI, a.initHTTPAPI, modules.UserInvisibleModule)

	mm.RegisterModule(All, nil)

	deps := map[string][]string{
		// Server:    nil,
		// Inspector: nil,
		HTTPAPI: {Server, Inspector},

		All: {Inspector, HTTPAPI},
	}

	for mod, targets := range deps {
		if err := mm.AddDependency(mod, targets...); err != nil {
			return err
		}
	}

	a.ModuleManager = mm

	return nil
}

func (a *App) initInspector() (services.Service, error) {
	i, err := inspector.New(a.cfg.Inspector, a.logger, a.out)
	if err != nil {
		return nil, errors.Wrap(err, "unable to init "+Inspector)
	}
	a.Inspector = i

	return i, nil
}

// initHTTPAPI mounts the inspector endpoint on the server. It has no service
// of its own.
func (a *App) initHTTPAPI() (services.Service, error) {
	a.Server.HTTP.Path("/inspect").Methods(http.MethodPost).Handler(a.Inspector.Handler())
	return nil, nil
}

func (a *App) initServer() (services.Service, error) {
	a.cfg.Server.MetricsNamespace = metricsNamespace
	a.cfg.Server.ExcludeRequestInLog = true
	a.cfg.Server.RegisterInstrumentation = true
	a.cfg.Server.Log = a.kitLogger

	server, err := server.New(a.cfg.Server)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create server")
	}

	servicesToWaitFor := func() []services.Service {
		svs := []services.Service(nil)
		for m, s := range a.serviceMap {
			// Server should not wait for itself.
			if m != Server {
				svs = append(svs, s)
			}
		}

		return svs
	}

	a.Server = server

	serverDone := make(chan error, 1)

	runFn := func(ctx context.Context) error {
		go func() {
			defer close(serverDone)
			serverDone <- server.Run()
		}()

		select {
		case <-ctx.Done():
			return nil
		case err := <-serverDone:
			if err != nil {
				return err
			}

			return fmt.Errorf("server stopped unexpectedly")
		}
	}

	stoppingFn := func(_ error) error {
		// wait until all modules are done, and then shutdown server.
		for _, s := range servicesToWaitFor() {
			_ = s.AwaitTerminated(context.Background())
		}

		// shutdown HTTP and gRPC servers (this also unblocks Run)
		server.Shutdown()

		// if not closed yet, wait until server stops.
		<-serverDone
		a.logger.Info("server stopped")
		return nil
	}

	return services.NewBasicService(nil, runFn, stoppingFn), nil
}
