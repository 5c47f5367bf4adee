// Package log provides the logging surface for dinerec.
//
// It exposes a small Logger interface plus two implementations: a stdlib
// backed DefaultLogger with levels and a kataras/golog adapter for
// applications that already run golog. A package-level default logger lets
// callers enable logging without threading a Logger through every
// constructor:
//
//	log.SetLogLevel(log.LogLevelDebug)
//
//	svc := conversation.NewService(classifier)
//	// service, task manager and pipeline all log through the default
//
// or plug in golog:
//
//	gl := golog.New()
//	log.SetDefaultLogger(log.NewGologLogger(gl))
package log
