// Package catalog turns a flat title collection and per-profile watch and like
// events into the shelves a client renders.
//
// Everything here is a pure function over an in-memory snapshot: no I/O, no
// shared state, no locking. Builders may run concurrently on the same
// snapshot. Every sort is stable, so the same input always produces the same
// output order.
//
// The central idea is the display entity: episodes of one series collapse
// into a single entity (Group), keyed by SeriesKey. Shelves are:
//
//   - BuildRecent: one entry per watched movie or series, most recent first,
//     resuming at the episode actually watched.
//   - BuildRecommendations: newest titles in the profile's top liked genres,
//     or the newest titles overall when nothing is liked yet.
//   - BuildPopular: views in a trailing window, summed across a series.
//   - BuildNewest: titles created within the last hour.
//   - BuildGenreShelves: everything older than an hour, one row per genre.
//
// Filter and VisibilityFor implement the search grid that replaces the
// shelves while any filter is active.
package catalog
