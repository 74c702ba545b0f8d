// Package domain contains the core business entities, value objects, and
// domain logic of the review scheduler: vocabulary words, per-learner word
// progress, revision sessions and their per-word results. It is independent
// of any specific infrastructure or delivery mechanism.
package domain
