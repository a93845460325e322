package image

// DefaultMaxAddress is the default highest address of each region, covering
// the full 16-bit address range.
const DefaultMaxAddress uint16 = 0xFFFF

// Builder can be used to build a process image.
type Builder struct {
	maxDiscreteInputAddress   uint16
	maxCoilAddress            uint16
	maxInputRegisterAddress   uint16
	maxHoldingRegisterAddress uint16
}

// MakeBuilder creates a new builder with all regions spanning the full
// 16-bit address range.
func MakeBuilder() Builder {
	return Builder{
		maxDiscreteInputAddress:   DefaultMaxAddress,
		maxCoilAddress:            DefaultMaxAddress,
		maxInputRegisterAddress:   DefaultMaxAddress,
		maxHoldingRegisterAddress: DefaultMaxAddress,
	}
}

// WithMaxDiscreteInputAddress sets the highest discrete input address.
func (b Builder) WithMaxDiscreteInputAddress(addr uint16) Builder {
	b.maxDiscreteInputAddress = addr
	return b
}

// WithMaxCoilAddress sets the highest coil address.
func (b Builder) WithMaxCoilAddress(addr uint16) Builder {
	b.maxCoilAddress = addr
	return b
}

// WithMaxInputRegisterAddress sets the highest input register address.
func (b Builder) WithMaxInputRegisterAddress(addr uint16) Builder {
	b.maxInputRegisterAddress = addr
	return b
}

// WithMaxHoldingRegisterAddress sets the highest holding register address.
func (b Builder) WithMaxHoldingRegisterAddress(addr uint16) Builder {
	b.maxHoldingRegisterAddress = addr
	return b
}

// Build builds the process image. Region capacities are immutable
// afterwards.
func (b Builder) Build() *Image {
	return &Image{
		discreteInputs:   newBitRegion(DiscreteInputs, b.maxDiscreteInputAddress),
		coils:            newBitRegion(Coils, b.maxCoilAddress),
		inputRegisters:   newRegisterRegion(InputRegisters, b.maxInputRegisterAddress),
		holdingRegisters: newRegisterRegion(HoldingRegisters, b.maxHoldingRegisterAddress),
	}
}
