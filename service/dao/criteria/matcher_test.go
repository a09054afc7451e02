package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/lottery/service/dao"
)

func TestMatch(t *testing.T) {
	fields := map[string]string{"Boot": "b1", "Label": "final"}
	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expect      bool
	}{
		{description: "no parameters", expect: true},
		{description: "single match", parameters: []*dao.Parameter{dao.NewParameter("Boot", "b1")}, expect: true},
		{description: "single mismatch", parameters: []*dao.Parameter{dao.NewParameter("Boot", "b2")}, expect: false},
		{description: "any of", parameters: []*dao.Parameter{dao.NewParameter("Label", "start", "final")}, expect: true},
		{description: "none of", parameters: []*dao.Parameter{dao.NewParameter("Label", "start", "middle")}, expect: false},
		{description: "all must match", parameters: []*dao.Parameter{dao.NewParameter("Boot", "b1"), dao.NewParameter("Label", "start")}, expect: false},
		{description: "unknown field ignored", parameters: []*dao.Parameter{dao.NewParameter("State", "x")}, expect: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.expect, Match(fields, testCase.parameters))
		})
	}
}
