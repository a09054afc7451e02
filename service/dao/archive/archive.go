// Package archive stores process table snapshots so that runs can be
// inspected after the fact. Records are keyed by id and can be filtered by
// the Boot and Label fields.
package archive

import (
	"github.com/viant/lottery/model/pstat"
	"github.com/viant/lottery/service/dao"
	"github.com/viant/lottery/service/dao/criteria"
)

// Service stores snapshot records
type Service dao.Service[string, pstat.Record]

// Fields returns the filterable fields of a record
func Fields(record *pstat.Record) map[string]string {
	return map[string]string{"Boot": record.Boot, "Label": record.Label}
}

// Matches returns true when record satisfies all parameters
func Matches(record *pstat.Record, parameters []*dao.Parameter) bool {
	return criteria.Match(Fields(record), parameters)
}
