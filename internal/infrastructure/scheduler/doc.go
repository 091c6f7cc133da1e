// Package scheduler runs background work: the delayed event publish queue
// backed by Redis or memory, and fixed-interval tasks such as the event
// reminder sweep.
package scheduler
