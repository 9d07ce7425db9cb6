// Package service assembles consul-service from the toolkit packages.
//
// LoadSettings reads the configuration once. New registers the discovery
// component and the HTTP server with a bootstrap.App so that the service is
// registered with the agent before it listens and deregistered after it has
// drained:
//
//	settings, err := service.LoadSettings()
//	if err != nil {
//	    return err
//	}
//	svc, err := service.New(settings)
//	if err != nil {
//	    return err
//	}
//	return svc.Run(ctx)
package service
