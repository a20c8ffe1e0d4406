// Package preload schedules expensive setup work onto background workers so
// that a frame-driven host application can keep rendering while the work runs.
// The host registers tasks, calls Start once, and polls IsLoading (or calls
// Frame) every tick to show a loading screen until the pool goes quiescent.
package preload
