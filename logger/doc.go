// Package logger provides structured logging for flowcheck built on zerolog.
//
// A Logger is cheap to derive: WithComponent tags every event with the
// owning package, WithFields attaches run-scoped context such as the flow id.
//
//	log := logger.NewDefault("flowcheck")
//	log.WithComponent("flow.engine").Info("layer complete", logger.Fields(
//		"layer", 1, "nodes", 3,
//	))
package logger
