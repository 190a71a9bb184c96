// Package process runs external tools (the speech engine, the media
// downloader, the transcoder) as child processes.
//
// Each child gets its own process group. When the context ends the whole
// group receives SIGTERM, and after GracePeriod the runtime kills it.
// Standard output is either captured in Result.Stdout or streamed to
// Command.Stdout so that two tools can be chained through a pipe.
package process
