package types

// ExecutionContext contains what a single step needs while it runs.
type ExecutionContext struct {
	Step   ResolvedStep
	Index  int
	Logger Logger
}
