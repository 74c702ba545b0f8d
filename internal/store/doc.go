// Package store defines interfaces for data persistence operations used by the
// review scheduler: vocabulary lookups, per-learner word progress, revision
// sessions and their results. The interfaces keep the scheduling rules
// independent of the database technology behind them.
package store
