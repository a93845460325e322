// Package pdu defines the protocol-level vocabulary shared between the server
// core and the transport subsystems: function codes, exception codes, and the
// request descriptor that is validated before the process image is touched.
package pdu

import "fmt"

// Modbus function codes.
const (
	FuncCodeReadCoils            = 0x01
	FuncCodeReadDiscreteInputs   = 0x02
	FuncCodeReadHoldingRegisters = 0x03
	FuncCodeReadInputRegisters   = 0x04

	FuncCodeWriteSingleCoil        = 0x05
	FuncCodeWriteSingleRegister    = 0x06
	FuncCodeWriteMultipleCoils     = 0x0F
	FuncCodeWriteMultipleRegisters = 0x10
	FuncCodeMaskWriteRegister      = 0x16

	FuncCodeReadWriteMultipleRegisters = 0x17
	FuncCodeReadFIFOQueue              = 0x18
)

// Quantity limits per the Modbus application protocol.
const (
	MaxBitQuantity           = 2000
	MaxRegisterReadQuantity  = 125
	MaxRegisterWriteQuantity = 123
)

// An ExceptionCode is a Modbus protocol-level exception. The zero value,
// ExceptionOK, means the request is allowed.
type ExceptionCode byte

// Exception codes a validator can return.
const (
	ExceptionOK                  ExceptionCode = 0
	ExceptionIllegalFunction     ExceptionCode = 1
	ExceptionIllegalDataAddress  ExceptionCode = 2
	ExceptionIllegalDataValue    ExceptionCode = 3
	ExceptionServerDeviceFailure ExceptionCode = 4
	ExceptionAcknowledge         ExceptionCode = 5
	ExceptionServerDeviceBusy    ExceptionCode = 6
)

func (c ExceptionCode) String() string {
	switch c {
	case ExceptionOK:
		return "OK"
	case ExceptionIllegalFunction:
		return "IllegalFunction"
	case ExceptionIllegalDataAddress:
		return "IllegalDataAddress"
	case ExceptionIllegalDataValue:
		return "IllegalDataValue"
	case ExceptionServerDeviceFailure:
		return "ServerDeviceFailure"
	case ExceptionAcknowledge:
		return "Acknowledge"
	case ExceptionServerDeviceBusy:
		return "ServerDeviceBusy"
	default:
		return fmt.Sprintf("ExceptionCode(%d)", byte(c))
	}
}

// Error makes a non-OK ExceptionCode usable as an error value by the
// transport layer.
func (c ExceptionCode) Error() string {
	return fmt.Sprintf("modbus exception %d (%s)", byte(c), c.String())
}

// A Request describes one logical client request as seen by the request
// validator: the function code, the starting address, and the number of
// addressed elements.
type Request struct {
	FunctionCode byte
	Address      uint16
	Quantity     uint16
}

// IsWrite reports whether the request mutates the process image.
func (r Request) IsWrite() bool {
	switch r.FunctionCode {
	case FuncCodeWriteSingleCoil,
		FuncCodeWriteSingleRegister,
		FuncCodeWriteMultipleCoils,
		FuncCodeWriteMultipleRegisters,
		FuncCodeMaskWriteRegister,
		FuncCodeReadWriteMultipleRegisters:
		return true
	}

	return false
}
