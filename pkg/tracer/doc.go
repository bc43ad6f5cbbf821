// Package tracer provides distributed tracing over OpenTelemetry.
//
// It wraps the OpenTelemetry SDK behind a small API: start a span, mark
// it failed, attach attributes, and carry the trace context across
// process boundaries as W3C headers. The index backend uses it to put
// every database transaction on the trace; other components can join
// the same trace through the shared *Tracer.
//
// Basic Usage:
//
//	tracerClient := tracer.NewClient(tracer.Config{
//		ServiceName:  "dicomdb",
//		AppEnv:       "production",
//		EnableExport: true,
//	}, log)
//
//	ctx, span := tracerClient.StartSpan(ctx, "index.transaction")
//	defer span.End()
//
//	if err := work(ctx); err != nil {
//		tracerClient.RecordErrorOnSpan(span, err)
//		return err
//	}
//
// Crossing a process boundary:
//
//	// Sender: attach the context to the outgoing message.
//	headers := tracerClient.GetCarrier(ctx)
//
//	// Receiver: rebuild the context, then span as usual.
//	ctx := tracerClient.SetCarrierOnContext(context.Background(), headers)
//	ctx, span := tracerClient.StartSpan(ctx, "handle-store-request")
//	defer span.End()
//
// FX Module Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		tracer.FXModule, // shuts the provider down on stop
//		// ... other modules
//	)
//	app.Run()
//
// With EnableExport disabled the tracer still hands out real spans, they
// are simply never shipped anywhere. Tests rely on that.
//
// All methods on Tracer are safe for concurrent use.
package tracer
