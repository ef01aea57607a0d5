package journey

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// journeyDoc mirrors the on-disk journey layout for encoding.
type journeyDoc struct {
	ID              string           `yaml:"id"`
	Name            string           `yaml:"name,omitempty"`
	Description     string           `yaml:"description,omitempty"`
	Tags            []string         `yaml:"tags,omitempty"`
	Category        string           `yaml:"category,omitempty"`
	StartingContext StartingContext  `yaml:"startingContext"`
	Metadata        Metadata         `yaml:"metadata"`
	Steps           []map[string]any `yaml:"steps"`
}

// Encode serializes the journey to the YAML journey file format. The output
// round-trips through Parse.
func Encode(j *Journey) ([]byte, error) {
	doc := journeyDoc{
		ID:              j.ID,
		Name:            j.Name,
		Description:     j.Description,
		Tags:            j.Tags,
		Category:        j.Category,
		StartingContext: j.StartingContext,
		Metadata:        j.Metadata,
	}

	for i, step := range j.Steps {
		node, err := stepToDoc(step)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		doc.Steps = append(doc.Steps, node)
	}

	return yaml.Marshal(&doc)
}

func stepToDoc(step Step) (map[string]any, error) {
	switch s := step.(type) {
	case *NavigateStep:
		return map[string]any{string(ActionNavigate): s}, nil
	case *ClickStep:
		return map[string]any{string(ActionClick): s}, nil
	case *FillStep:
		return map[string]any{string(ActionFill): s}, nil
	case *SelectStep:
		return map[string]any{string(ActionSelect): s}, nil
	case *WaitStep:
		return map[string]any{string(ActionWait): s}, nil
	case *AssertStep:
		return map[string]any{string(ActionAssert): s}, nil
	case *UploadStep:
		return map[string]any{string(ActionUpload): s}, nil
	case *DragDropStep:
		return map[string]any{string(ActionDragDrop): s}, nil
	}
	return nil, fmt.Errorf("unknown step type %T", step)
}
