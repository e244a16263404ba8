package types

// StepTemplate is one declared HTTP call as written in the flow file.
// String values in Body, Params and Headers may embed placeholders.
type StepTemplate struct {
	Name     string            `yaml:"name" validate:"required"`
	Method   string            `yaml:"method" validate:"required,oneof=GET POST PUT PATCH DELETE"`
	Endpoint string            `yaml:"endpoint"`
	Body     map[string]any    `yaml:"body,omitempty"`
	Params   map[string]string `yaml:"params,omitempty"`
	Headers  map[string]string `yaml:"headers,omitempty"`
}

// ResolvedStep is a StepTemplate whose endpoint has been joined onto the base address.
type ResolvedStep struct {
	Name    string
	Method  string
	URL     string
	Body    map[string]any
	Params  map[string]string
	Headers map[string]string
}

// ResultKind tags which payload a StepResult carries.
type ResultKind int

const (
	ResultJSON ResultKind = iota
	ResultArtifact
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultJSON:
		return "json"
	case ResultArtifact:
		return "artifact"
	case ResultError:
		return "error"
	default:
		return "unknown"
	}
}

// StepResult is the outcome of a single step. Exactly one of Output,
// ArtifactPath or Err is meaningful, selected by Kind. Build one with
// JSONResult, ArtifactResult or ErrorResult.
type StepResult struct {
	Kind         ResultKind `json:"kind"`
	Output       any        `json:"output,omitempty"`
	ArtifactPath string     `json:"artifact_path,omitempty"`
	Err          error      `json:"-"`
}

// JSONResult wraps a decoded response value. Raw text responses are stored
// here too until artifact materialization decides otherwise.
func JSONResult(v any) StepResult {
	return StepResult{Kind: ResultJSON, Output: v}
}

func ArtifactResult(path string) StepResult {
	return StepResult{Kind: ResultArtifact, ArtifactPath: path}
}

func ErrorResult(err error) StepResult {
	return StepResult{Kind: ResultError, Err: err}
}
