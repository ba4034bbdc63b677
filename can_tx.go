package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"dbw-service/controller"

	"github.com/brutella/can"
)

// FramePublisher is satisfied by *can.Bus.
type FramePublisher interface {
	Publish(frame can.Frame) error
}

// Encoder turns a semantic command into bus frames.
type Encoder interface {
	Encode(cmd controller.Command) ([]can.Frame, error)
}

// RawEncoder packs commands into fixed little frames on the configured IDs.
// It carries the values without the vehicle DBC layout and checksums; a
// vehicle-specific Encoder replaces it on a real car.
type RawEncoder struct {
	ids FrameIDs
}

func NewRawEncoder(ids FrameIDs) *RawEncoder {
	return &RawEncoder{ids: ids}
}

func (e *RawEncoder) Encode(cmd controller.Command) ([]can.Frame, error) {
	switch c := cmd.(type) {
	case controller.SteeringControl:
		data := make([]byte, 5)
		binary.BigEndian.PutUint16(data[0:2], uint16(clampInt16(float64(c.ApplySteer))))
		binary.BigEndian.PutUint16(data[2:4], uint16(clampInt16(float64(c.AuxApplySteer))))
		data[4] = byte(c.Frame & 0x0F)
		return []can.Frame{packFrame(e.ids.Steering, data)}, nil

	case controller.ButtonCommand:
		var bit byte
		switch c.Button {
		case controller.ButtonCancel:
			bit = 0x01
		case controller.ButtonResume:
			bit = 0x02
		}
		return []can.Frame{packFrame(e.ids.Buttons, []byte{bit, byte(c.Counter & 0x0F)})}, nil

	case controller.AlertCommand:
		return []can.Frame{packFrame(e.ids.Alert, []byte{boolToByte(c.LaneDeparture) | boolToByte(c.SteerRequired)<<1})}, nil

	case controller.AuxiliaryAccelCommand:
		data := make([]byte, 4)
		binary.BigEndian.PutUint16(data[0:2], uint16(clampInt16(c.Accel)))
		data[2] = boolToByte(c.LongActive) | boolToByte(c.Hold)<<1
		data[3] = byte(c.Frame & 0xFF)
		return []can.Frame{packFrame(e.ids.Radar, data)}, nil

	case controller.AccCommand:
		data := make([]byte, 3)
		accel := math.Max(0, math.Min(c.Accel, math.MaxUint16))
		binary.BigEndian.PutUint16(data[0:2], uint16(accel))
		data[2] = boolToByte(c.Hold) | boolToByte(c.Resume)<<1
		return []can.Frame{packFrame(e.ids.Acc, data)}, nil
	}

	return nil, fmt.Errorf("unsupported command kind %s", cmd.Kind())
}

// CANTx publishes the commands of one cycle in order.
type CANTx struct {
	log *LeveledLogger
	bus FramePublisher
	enc Encoder
	mu  sync.Mutex
}

func NewCANTx(logger *LeveledLogger, bus FramePublisher, enc Encoder) *CANTx {
	return &CANTx{
		log: logger,
		bus: bus,
		enc: enc,
	}
}

// Send encodes and publishes every command. A failing frame does not stop
// the ones after it; all errors are returned together.
func (tx *CANTx) Send(cmds []controller.Command) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	var errs []error
	for _, cmd := range cmds {
		frames, err := tx.enc.Encode(cmd)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, frame := range frames {
			tx.log.DebugCAN("TX", frame.ID, frame.Data[:], frame.Length)
			if err := tx.bus.Publish(frame); err != nil {
				errs = append(errs, fmt.Errorf("failed to publish %s frame 0x%03X: %w", cmd.Kind(), frame.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}

// packFrame creates a CAN frame with the given ID and data
func packFrame(id uint32, data []byte) can.Frame {
	var frameData [8]byte
	copy(frameData[:], data)
	return can.Frame{
		ID:     id,
		Length: uint8(len(data)),
		Flags:  0,
		Data:   frameData,
	}
}

func clampInt16(v float64) int16 {
	return int16(math.Max(math.MinInt16, math.Min(v, math.MaxInt16)))
}

// Helper function to convert bool to byte
func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
