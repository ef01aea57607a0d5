package journey

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ParseFile parses a single YAML journey file.
func ParseFile(path string) (*Journey, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is a user-provided journey file
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path)
}

// Parse parses YAML journey content.
func Parse(data []byte, sourcePath string) (*Journey, error) {
	var j Journey
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, &ParseError{
			Path:    sourcePath,
			Message: fmt.Sprintf("invalid journey: %v", err),
		}
	}

	var raw struct {
		Steps []yaml.Node `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{
			Path:    sourcePath,
			Message: fmt.Sprintf("invalid steps: %v", err),
		}
	}

	for i := range raw.Steps {
		step, err := parseStep(&raw.Steps[i], sourcePath)
		if err != nil {
			return nil, err
		}
		if step.ID() == "" {
			assignStepID(step, i)
		}
		j.Steps = append(j.Steps, step)
	}

	if j.ID == "" {
		return nil, &ParseError{
			Path:    sourcePath,
			Message: "journey id is required",
		}
	}

	j.SourcePath = sourcePath
	return &j, nil
}

func parseStep(node *yaml.Node, sourcePath string) (Step, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: "step must be a mapping keyed by action",
		}
	}

	action, valueNode := extractAction(node)
	if action == "" || valueNode == nil {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: "unknown step action",
		}
	}

	return decodeStep(Action(action), valueNode, sourcePath)
}

func extractAction(node *yaml.Node) (string, *yaml.Node) {
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i].Value
		if isAction(key) {
			return key, node.Content[i+1]
		}
	}
	return "", nil
}

func isAction(key string) bool {
	switch Action(key) {
	case ActionNavigate, ActionClick, ActionFill, ActionSelect,
		ActionWait, ActionAssert, ActionUpload, ActionDragDrop:
		return true
	}
	return false
}

func decodeStep(action Action, valueNode *yaml.Node, sourcePath string) (Step, error) {
	switch action {
	case ActionNavigate:
		var s NavigateStep
		if valueNode.Kind == yaml.ScalarNode {
			s.URL = valueNode.Value
		} else if err := valueNode.Decode(&s); err != nil {
			return nil, wrapParseError(sourcePath, valueNode.Line, err)
		}
		return &s, nil

	case ActionClick:
		var s ClickStep
		if valueNode.Kind == yaml.ScalarNode {
			s.Selector = valueNode.Value
		} else if err := valueNode.Decode(&s); err != nil {
			return nil, wrapParseError(sourcePath, valueNode.Line, err)
		}
		return &s, nil

	case ActionFill:
		var s FillStep
		if err := valueNode.Decode(&s); err != nil {
			return nil, wrapParseError(sourcePath, valueNode.Line, err)
		}
		return &s, nil

	case ActionSelect:
		var s SelectStep
		if err := valueNode.Decode(&s); err != nil {
			return nil, wrapParseError(sourcePath, valueNode.Line, err)
		}
		return &s, nil

	case ActionWait:
		var s WaitStep
		if valueNode.Kind == yaml.ScalarNode {
			// Scalar form: wait duration in ms.
			if err := valueNode.Decode(&s.DurationMs); err != nil {
				return nil, wrapParseError(sourcePath, valueNode.Line, err)
			}
		} else if err := valueNode.Decode(&s); err != nil {
			return nil, wrapParseError(sourcePath, valueNode.Line, err)
		}
		return &s, nil

	case ActionAssert:
		var s AssertStep
		if valueNode.Kind == yaml.ScalarNode {
			s.Selector = valueNode.Value
		} else if err := valueNode.Decode(&s); err != nil {
			return nil, wrapParseError(sourcePath, valueNode.Line, err)
		}
		return &s, nil

	case ActionUpload:
		var s UploadStep
		if err := valueNode.Decode(&s); err != nil {
			return nil, wrapParseError(sourcePath, valueNode.Line, err)
		}
		return &s, nil

	case ActionDragDrop:
		var s DragDropStep
		if err := valueNode.Decode(&s); err != nil {
			return nil, wrapParseError(sourcePath, valueNode.Line, err)
		}
		return &s, nil
	}

	return nil, &ParseError{
		Path:    sourcePath,
		Line:    valueNode.Line,
		Message: fmt.Sprintf("unknown step action: %s", action),
	}
}

func assignStepID(step Step, idx int) {
	id := fmt.Sprintf("step-%d", idx+1)
	switch s := step.(type) {
	case *NavigateStep:
		s.StepID = id
	case *ClickStep:
		s.StepID = id
	case *FillStep:
		s.StepID = id
	case *SelectStep:
		s.StepID = id
	case *WaitStep:
		s.StepID = id
	case *AssertStep:
		s.StepID = id
	case *UploadStep:
		s.StepID = id
	case *DragDropStep:
		s.StepID = id
	}
}

func wrapParseError(path string, line int, err error) error {
	return &ParseError{
		Path:    path,
		Line:    line,
		Message: err.Error(),
	}
}
