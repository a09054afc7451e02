package memory

import (
	"github.com/viant/lottery/model/pstat"
	"github.com/viant/lottery/service/dao"
	"github.com/viant/lottery/service/dao/archive"
	"github.com/viant/lottery/service/dao/store"
)

// Service implements an in-memory snapshot archive
type Service struct {
	*store.MemoryStore[string, pstat.Record]
}

var _ dao.Service[string, pstat.Record] = (*Service)(nil)

// New creates an empty archive
func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[string, pstat.Record](func(r *pstat.Record) string { return r.ID }, archive.Matches),
	}
}
