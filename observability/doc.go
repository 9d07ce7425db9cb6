// Package observability provides Prometheus metrics and OpenTelemetry tracing
// for the service.
//
// Tracing:
//
//	shutdown, err := observability.InitTracer(ctx, cfg.Tracing)
//	defer shutdown(ctx)
//
// Metrics:
//
//	metrics := observability.NewMetrics("consul_service")
//	engine.GET("/metrics", gin.WrapH(metrics.Handler()))
//
// Discovery agent calls are wrapped in a span and counted:
//
//	ctx, op := observability.StartRegistryOperation(ctx, metrics, "register")
//	err := agent.Register(ctx, svc)
//	op.End(err)
package observability
