package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOp_IsZoneMgmt(t *testing.T) {
	mgmt := []Op{OpZoneReset, OpZoneOpen, OpZoneClose, OpZoneFinish}
	for _, op := range mgmt {
		assert.True(t, op.IsZoneMgmt(), op.String())
	}

	other := []Op{OpRead, OpWrite, OpAppend, OpFlush}
	for _, op := range other {
		assert.False(t, op.IsZoneMgmt(), op.String())
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "empty", StateEmpty.String())
	assert.Equal(t, "full", StateFull.String())
	assert.Equal(t, "unknown", State(200).String())
}
