package invoke

import (
	"github.com/goliatone/go-formflow/pkg/location"
	"github.com/goliatone/go-formflow/pkg/provider"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/trigger"
)

type inputs struct {
	values  []any
	lists   [][]location.IndexedValue
	index   location.Index
	trigger trigger.Trigger
	context any
	session *session.Session
}

var _ provider.Inputs = (*inputs)(nil)

func (in *inputs) Value(h provider.Handle) any {
	if int(h) < 0 || int(h) >= len(in.values) {
		return nil
	}
	return in.values[h]
}

func (in *inputs) Values(h provider.Handle) []location.IndexedValue {
	if int(h) < 0 || int(h) >= len(in.lists) {
		return nil
	}
	return in.lists[h]
}

func (in *inputs) Index() location.Index     { return in.index.Clone() }
func (in *inputs) Trigger() trigger.Trigger  { return in.trigger }
func (in *inputs) Context() any              { return in.context }
func (in *inputs) Session() *session.Session { return in.session }
