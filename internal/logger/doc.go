// Package logger wraps zap to offer:
//   - a global sugared logger with a console encoder,
//   - a rotating file logger for when the terminal is owned by the clock UI,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and leveled helpers (Info, InfoKV, WarnKV, ...).
//
// Services take a context and extract the logger from it, so every
// component logs under its own name with its own structured fields.
package logger
