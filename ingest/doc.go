// Package ingest turns each kind of audio source into a local file
// registered with a job's lifecycle.Scope.
//
// There are three sources: an uploaded file already on disk, an in-memory
// live recording and a remote video reference. Size and type limits are
// checked before any I/O. Only remote video is transcoded; the other two are
// handed to the engine in their original container.
package ingest
