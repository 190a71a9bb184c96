// Package provider defines swappable backends behind a generic
// request/response interface.
//
// The speech engine is a RequestResponse provider. Backends register a
// Factory under a name; the service picks one from config and wraps it with
// logging, metrics and tracing middleware:
//
//	reg := provider.NewRegistry[transcription.Engine]()
//	reg.RegisterFactory("whisper", whisper.Factory(whisperCfg, runner))
//	engine, err := reg.Resolve("whisper", nil)
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithMetrics[In, Out](metrics),
//	    provider.WithTracing[In, Out]("scribed"),
//	)(engine)
package provider
