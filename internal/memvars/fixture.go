package memvars

import (
	"fmt"

	"github.com/goccy/go-yaml"
	expression "github.com/limesurvey/expression-engine"
)

// fixtureDoc mirrors the on-disk YAML shape a demonstration session
// loads its variable/question universe from.
type fixtureDoc struct {
	Variables []fixtureVariable `yaml:"variables"`
	Questions []fixtureQuestion `yaml:"questions"`
}

type fixtureVariable struct {
	Name      string            `yaml:"name"`
	Value     string            `yaml:"value"`
	Origin    string            `yaml:"origin"`
	ReadWrite bool              `yaml:"readWrite"`
	Attrs     map[string]string `yaml:"attrs"`
}

type fixtureQuestion struct {
	Code   string         `yaml:"code"`
	SGQA   string         `yaml:"sgqa"`
	Fields []fixtureField `yaml:"fields"`
}

type fixtureField struct {
	Name string `yaml:"name"`
	Code string `yaml:"code"`
}

// LoadFixture parses a YAML document into a fresh Store. Every fixture
// attribute value is loaded as a plain string Value; "Y"/"N"/"1"/""
// happen to be exactly the payloads the engine's truthiness and
// readWrite checks expect, so no separate boolean decoding is needed.
func LoadFixture(data []byte) (*Store, error) {
	var doc fixtureDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("memvars: parsing fixture: %w", err)
	}

	s := New()
	for _, v := range doc.Variables {
		attrs := make(map[string]expression.Value, len(v.Attrs))
		for k, raw := range v.Attrs {
			attrs[k] = expression.StringValue(raw, 0, expression.OriginString)
		}
		s.Set(v.Name, expression.StringValue(v.Value, 0, originFromString(v.Origin)), v.ReadWrite, attrs)
	}
	for _, q := range doc.Questions {
		fields := make([]expression.Field, 0, len(q.Fields))
		for _, f := range q.Fields {
			fields = append(fields, expression.Field{Name: f.Name, Code: f.Code})
		}
		s.SetQuestion(q.Code, &expression.Question{SGQA: q.SGQA, Fields: fields})
	}
	return s, nil
}

func originFromString(s string) expression.Origin {
	switch s {
	case "number":
		return expression.OriginNumber
	case "word":
		return expression.OriginWord
	default:
		return expression.OriginString
	}
}
