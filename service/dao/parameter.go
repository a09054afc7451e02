package dao

// Parameter filters List results by a named field
type Parameter struct {
	Name  string
	Value interface{}
}

// Values returns the accepted values; a nil result means the parameter
// accepts anything
func (p *Parameter) Values() []string {
	switch actual := p.Value.(type) {
	case string:
		return []string{actual}
	case []string:
		return actual
	}
	return nil
}

// NewParameter creates a parameter matching any of values
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
