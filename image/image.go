// Package image implements the process image: the four addressable memory
// regions (discrete inputs, coils, input registers, holding registers) that
// client requests read and write. Region capacities are fixed at
// construction. The package performs no locking over the regions; callers
// coordinate access externally.
package image

// An Image is the aggregate of the four regions, representing the server's
// exposed data model. It is exclusively owned by a server instance; the
// regions are lent out as mutable views.
type Image struct {
	discreteInputs   *BitRegion
	coils            *BitRegion
	inputRegisters   *RegisterRegion
	holdingRegisters *RegisterRegion
}

// DiscreteInputs returns the discrete input region.
func (img *Image) DiscreteInputs() *BitRegion {
	return img.discreteInputs
}

// Coils returns the coil region.
func (img *Image) Coils() *BitRegion {
	return img.coils
}

// InputRegisters returns the input register region.
func (img *Image) InputRegisters() *RegisterRegion {
	return img.inputRegisters
}

// HoldingRegisters returns the holding register region.
func (img *Image) HoldingRegisters() *RegisterRegion {
	return img.holdingRegisters
}

// Clear zeroes all four regions. The caller must make sure that no cycle is
// in flight.
func (img *Image) Clear() {
	img.discreteInputs.clear()
	img.coils.clear()
	img.inputRegisters.clear()
	img.holdingRegisters.clear()
}
