// Package evaluation matches weather conditions against scenario rules
// and drives the resulting device status transitions.
//
// Evaluate is the pure core: one condition kind, one operator, one
// literal, checked against a weather snapshot. The Orchestrator wraps it
// in a sequential pass over all devices, fetching weather and rules per
// device with the caller's credential and applying every matching rule.
// The Scheduler triggers runs on a fixed interval with a configured
// service credential.
//
// Failure handling is deliberately asymmetric: rule evaluation errors
// are logged and the rule is skipped, while collaborator and transition
// failures abort the whole run. There is no partial-success report and
// no retry.
package evaluation
