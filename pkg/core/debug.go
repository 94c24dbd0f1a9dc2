package core

// DebugMode controls whether update errors reported by ObserverElement carry
// stack traces.
var DebugMode = true

// SetDebugMode enables or disables debug mode.
func SetDebugMode(debug bool) {
	DebugMode = debug
}
