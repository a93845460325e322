package recording

import (
	"time"

	"github.com/fieldbuslab/modserve/server"
)

// A ChangeEntry is one recorded mutation: a single address that changed in
// one region during one cycle.
type ChangeEntry struct {
	Cycle   uint64
	Region  string
	Address uint16
	UnixUS  int64
}

// A ChangeLogger is a server hook that writes every change notification into
// a DataRecorder, one row per changed address.
type ChangeLogger struct {
	recorder  DataRecorder
	tableName string
	cycle     uint64
}

// NewChangeLogger creates a ChangeLogger writing into the given recorder and
// creates its table. Register it on a server with AcceptHook.
func NewChangeLogger(recorder DataRecorder, tableName string) *ChangeLogger {
	l := &ChangeLogger{
		recorder:  recorder,
		tableName: tableName,
	}

	recorder.CreateTable(tableName, ChangeEntry{})

	return l
}

// Func records the change sets delivered at the RegistersChanged and
// CoilsChanged positions. It runs on the cycle's goroutine, so no locking is
// needed.
func (l *ChangeLogger) Func(ctx server.HookCtx) {
	switch ctx.Pos {
	case server.HookPosAfterCycle:
		l.cycle++
	case server.HookPosRegistersChanged, server.HookPosCoilsChanged:
		cs := ctx.Item.(server.ChangeSet)
		now := time.Now().UnixMicro()

		for _, addr := range cs.Addresses {
			l.recorder.InsertData(l.tableName, ChangeEntry{
				Cycle:   l.cycle,
				Region:  cs.Region.String(),
				Address: addr,
				UnixUS:  now,
			})
		}
	}
}
