// Package youtube turns a remote video reference into a local, normalized
// audio file.
//
// The Downloader validates the URL, resolves metadata, enforces the
// duration ceiling and then streams the best audio-only track straight into
// a transcoder producing mono 16 kHz WAV. The three external steps are small
// interfaces so the command line tools in youtube/ytdlp can be replaced by
// fakes:
//
//	d := youtube.NewDownloader(cfg, ytdlp.NewResolver(tc, runner),
//		ytdlp.NewStreamer(tc, runner), ytdlp.NewTranscoder(fc, runner))
//	path, meta, err := d.Fetch(ctx, scope, "https://youtu.be/dQw4w9WgXcQ")
//
// The output path is registered with the job scope as soon as it is
// allocated, so a failed transcode never leaves a partial file behind.
package youtube
