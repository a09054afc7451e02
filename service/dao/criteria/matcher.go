package criteria

import (
	"github.com/viant/lottery/service/dao"
)

// Match returns true when, for every parameter naming a field in fields, the
// field value is one of the parameter values. Parameters naming unknown
// fields, or carrying a value of an unsupported type, are ignored.
func Match(fields map[string]string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		actual, ok := fields[parameter.Name]
		if !ok {
			continue
		}
		if _, isList := parameter.Value.([]string); !isList {
			if _, isString := parameter.Value.(string); !isString {
				continue
			}
		}
		if !contains(parameter.Values(), actual) {
			return false
		}
	}
	return true
}

func contains(values []string, candidate string) bool {
	for _, value := range values {
		if value == candidate {
			return true
		}
	}
	return false
}
