package monitor

import "github.com/teslashibe/go-vigil/pkg/attention"

// Sink receives monitor output. Methods are called from the monitor loop
// and must not block for long.
type Sink interface {
	OnStart(snap attention.Snapshot)
	OnFrame(report attention.Report)
	OnAlert(intent attention.AlertIntent)
	OnAlertClear(intent attention.AlertIntent)
	OnTick(snap attention.Snapshot)
	OnStop(summary attention.Summary)
}

// NopSink implements Sink with no-ops. Embed it to handle a subset.
type NopSink struct{}

func (NopSink) OnStart(attention.Snapshot)         {}
func (NopSink) OnFrame(attention.Report)           {}
func (NopSink) OnAlert(attention.AlertIntent)      {}
func (NopSink) OnAlertClear(attention.AlertIntent) {}
func (NopSink) OnTick(attention.Snapshot)          {}
func (NopSink) OnStop(attention.Summary)           {}
