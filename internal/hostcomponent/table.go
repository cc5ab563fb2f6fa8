package hostcomponent

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

type tableFile struct {
	Platform        string    `yaml:"platform"`
	BindingMarker   string    `yaml:"bindingMarker"`
	TemplateExt     string    `yaml:"templateExt"`
	DirectivePrefix string    `yaml:"directivePrefix"`
	Components      yaml.Node `yaml:"components"`
}

type componentNode struct {
	Tag   string    `yaml:"tag"`
	Props yaml.Node `yaml:"props"`
}

// ParseTable decodes one platform table. Mappings are walked as nodes so the
// declaration order of props survives into the derived whitelist.
func ParseTable(data []byte) (*Platform, error) {
	var tf tableFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}

	if tf.Platform == "" {
		return nil, fmt.Errorf("%w: missing platform", ErrMalformedTable)
	}
	if tf.BindingMarker == "" {
		return nil, fmt.Errorf("%w: %s: missing bindingMarker", ErrMalformedTable, tf.Platform)
	}
	if tf.TemplateExt == "" {
		tf.TemplateExt = ".axml"
	}

	p := &Platform{
		Name:            tf.Platform,
		BindingMarker:   tf.BindingMarker,
		TemplateExt:     tf.TemplateExt,
		DirectivePrefix: tf.DirectivePrefix,
		components:      make(map[string]*Component),
	}

	if tf.Components.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: components must be a mapping", ErrMalformedTable, tf.Platform)
	}

	for i := 0; i+1 < len(tf.Components.Content); i += 2 {
		key := tf.Components.Content[i]
		value := tf.Components.Content[i+1]

		var cn componentNode
		if err := value.Decode(&cn); err != nil {
			return nil, fmt.Errorf("%w: %s: line %d: %v", ErrMalformedTable, key.Value, key.Line, err)
		}

		specs, err := propSpecs(key.Value, &cn.Props)
		if err != nil {
			return nil, err
		}

		if _, dup := p.components[key.Value]; dup {
			return nil, fmt.Errorf("%w: %s: component %s defined twice", ErrMalformedTable, tf.Platform, key.Value)
		}

		c, err := NewComponent(key.Value, cn.Tag, tf.BindingMarker, specs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tf.Platform, err)
		}
		p.components[key.Value] = c
	}

	return p, nil
}

func propSpecs(component string, node *yaml.Node) ([]PropSpec, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %s: props must be a mapping", ErrMalformedTable, component)
	}

	specs := make([]PropSpec, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		value := node.Content[i+1]

		spec := PropSpec{Prop: key.Value}
		switch {
		case value.Kind == yaml.ScalarNode && value.Tag == "!!null":
		case value.Kind == yaml.ScalarNode:
			spec.Override = value.Value
		default:
			return nil, fmt.Errorf("%w: %s.%s: line %d: native name must be a string", ErrMalformedTable, component, key.Value, value.Line)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
