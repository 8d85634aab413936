package core

// Logger receives rendering progress messages
type Logger interface {
	Printf(format string, args ...interface{})
}
