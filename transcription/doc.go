// Package transcription holds the engine-facing types of the pipeline: the
// request handed to a speech engine, the raw output it returns, the
// confidence scorer and the assembler that builds the caller-facing result.
//
// Engines are provider.RequestResponse implementations selected through a
// registry:
//
//	reg := transcription.NewRegistry()
//	reg.RegisterFactory(whisper.ProviderName, whisper.Factory(runner))
//	engine, err := reg.Resolve(whisper.ProviderName, nil)
//	out, err := engine.Execute(ctx, transcription.Request{AudioPath: p, Scope: scope})
//
// # Backends
//
//   - transcription/whisper: the openai-whisper command line tool
package transcription
