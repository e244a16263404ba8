package sinks

import (
	"fmt"
	"strings"
	"time"

	"github.com/arnavsurve/dropreport/pkg/log"
	"github.com/arnavsurve/dropreport/pkg/types"
	"github.com/fatih/color"
)

var levelColorMap = map[types.Level]*color.Color{
	types.DebugLevel: color.New(color.FgCyan),
	types.InfoLevel:  color.New(color.FgGreen),
	types.WarnLevel:  color.New(color.FgYellow),
	types.ErrorLevel: color.New(color.FgRed),
	types.FatalLevel: color.New(color.FgRed, color.Bold),
}

type ConsoleSink struct{}

func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{}
}

func (c *ConsoleSink) Write(event *log.LogEvent) error {
	stepName := getStringField(event.Fields, "step_name")
	errorMsg := getStringField(event.Fields, "error")
	levelStr := strings.ToUpper(levelToString(event.Level))
	timestampStr := event.Timestamp.Format(time.RFC3339)

	levelFmt := color.New(color.FgWhite).SprintFunc()
	if lc, ok := levelColorMap[event.Level]; ok {
		levelFmt = lc.SprintFunc()
	}

	stepLabel := stepName
	if stepLabel == "" {
		stepLabel = "flow"
	}

	output := fmt.Sprintf("[%s %s] %s: %s",
		levelFmt(levelStr),
		color.New(color.FgWhite).Sprint(timestampStr),
		color.CyanString(stepLabel),
		event.Message,
	)
	if errorMsg != "" {
		output += " " + color.RedString(errorMsg)
	}
	fmt.Println(output)
	return nil
}

func (c *ConsoleSink) Close() error {
	return nil
}

// Helper to safely get string field from LogEvent.Fields
func getStringField(fields map[string]any, key string) string {
	if val, ok := fields[key]; ok {
		if strVal, isStr := val.(string); isStr {
			return strVal
		}
	}
	return ""
}

func levelToString(l types.Level) string {
	switch l {
	case types.DebugLevel:
		return "debug"
	case types.InfoLevel:
		return "info"
	case types.WarnLevel:
		return "warn"
	case types.ErrorLevel:
		return "error"
	case types.FatalLevel:
		return "fatal"
	default:
		return "unknown"
	}
}
