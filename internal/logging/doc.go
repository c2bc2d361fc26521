// Package logging assembles structured slog loggers and formatting helpers used
// across stagehand.
//
// It owns the console and JSON handlers, picks between them for the "auto"
// format by checking whether stderr is a terminal, and can tee a JSON copy of
// every record into the state directory. Context helpers tag log lines with the
// pass run id and phase, and WarnWithContext keeps warnings shaped as cause,
// impact and next step.
package logging
