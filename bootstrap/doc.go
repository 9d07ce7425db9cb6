// Package bootstrap orchestrates the lifecycle of consul-service.
//
// It applies and validates typed configuration, initializes the logger,
// starts registered components in order, runs startup and shutdown hooks,
// and stops components in reverse order on SIGINT/SIGTERM or context
// cancellation.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(settings)
//	if err != nil {
//	    return err
//	}
//	_ = app.RegisterComponent(discoveryComponent) // registers with the agent
//	_ = app.RegisterComponent(serverComponent)    // binds and serves
//	return app.Run(ctx)
//
// If any component or startup hook fails, components that already started are
// stopped before Run returns the error.
package bootstrap
