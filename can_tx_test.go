package main

import (
	"errors"
	"testing"

	"dbw-service/controller"

	"github.com/brutella/can"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBus struct {
	frames []can.Frame
	failID uint32
}

func (b *fakeBus) Publish(frame can.Frame) error {
	if b.failID != 0 && frame.ID == b.failID {
		return errors.New("no buffer space available")
	}
	b.frames = append(b.frames, frame)
	return nil
}

func TestRawEncoder(t *testing.T) {
	ids := DefaultVehicleConfig().Frames
	enc := NewRawEncoder(ids)

	tests := []struct {
		name string
		cmd  controller.Command
		id   uint32
		data []byte
	}{
		{"steering", controller.SteeringControl{Frame: 0x13, ApplySteer: -2, AuxApplySteer: 300}, ids.Steering, []byte{0xFF, 0xFE, 0x01, 0x2C, 0x03}},
		{"cancel", controller.ButtonCommand{Button: controller.ButtonCancel, Counter: 17}, ids.Buttons, []byte{0x01, 0x01}},
		{"resume", controller.ButtonCommand{Button: controller.ButtonResume, Counter: 3}, ids.Buttons, []byte{0x02, 0x03}},
		{"alert", controller.AlertCommand{SteerRequired: true}, ids.Alert, []byte{0x02}},
		{"radar", controller.AuxiliaryAccelCommand{Frame: 258, LongActive: true, Accel: -1000, Hold: true}, ids.Radar, []byte{0xFC, 0x18, 0x03, 0x02}},
		{"acc", controller.AccCommand{Accel: 2120, Resume: true}, ids.Acc, []byte{0x08, 0x48, 0x02}},
		{"acc clamped", controller.AccCommand{Accel: -50}, ids.Acc, []byte{0x00, 0x00, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames, err := enc.Encode(tt.cmd)
			require.NoError(t, err)
			require.Len(t, frames, 1)
			assert.Equal(t, tt.id, frames[0].ID)
			assert.Equal(t, uint8(len(tt.data)), frames[0].Length)
			assert.Equal(t, tt.data, frames[0].Data[:frames[0].Length])
		})
	}
}

func TestCANTxSendInOrder(t *testing.T) {
	bus := &fakeBus{}
	ids := DefaultVehicleConfig().Frames
	tx := NewCANTx(newTestLogger(), bus, NewRawEncoder(ids))

	err := tx.Send([]controller.Command{
		controller.ButtonCommand{Button: controller.ButtonCancel},
		controller.AccCommand{Accel: 2000},
		controller.SteeringControl{},
	})
	require.NoError(t, err)

	require.Len(t, bus.frames, 3)
	assert.Equal(t, ids.Buttons, bus.frames[0].ID)
	assert.Equal(t, ids.Acc, bus.frames[1].ID)
	assert.Equal(t, ids.Steering, bus.frames[2].ID)
}

func TestCANTxSendContinuesAfterFailure(t *testing.T) {
	ids := DefaultVehicleConfig().Frames
	bus := &fakeBus{failID: ids.Alert}
	tx := NewCANTx(newTestLogger(), bus, NewRawEncoder(ids))

	err := tx.Send([]controller.Command{
		controller.AlertCommand{LaneDeparture: true},
		controller.SteeringControl{ApplySteer: 5},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0x440")

	require.Len(t, bus.frames, 1)
	assert.Equal(t, ids.Steering, bus.frames[0].ID)
}
