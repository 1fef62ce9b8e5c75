// Package infra contains technical adapters: the zerolog logger, metrics
// exporters, Sentry monitoring and the MQTT event mirror. These packages
// depend only on the interfaces defined in the core packages.
package infra
