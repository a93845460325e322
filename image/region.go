package image

import "fmt"

// A Kind names one of the four addressable areas of the process image.
type Kind int

// The four region kinds.
const (
	DiscreteInputs Kind = iota
	Coils
	InputRegisters
	HoldingRegisters
)

func (k Kind) String() string {
	switch k {
	case DiscreteInputs:
		return "DiscreteInputs"
	case Coils:
		return "Coils"
	case InputRegisters:
		return "InputRegisters"
	case HoldingRegisters:
		return "HoldingRegisters"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsBitRegion reports whether the kind stores one bit per address.
func (k Kind) IsBitRegion() bool {
	return k == DiscreteInputs || k == Coils
}

// An AccessOutOfRangeError reports an access beyond the configured maximum
// address of a region. Accesses are never clamped or truncated.
type AccessOutOfRangeError struct {
	Kind       Kind
	Address    uint16
	Quantity   int
	MaxAddress uint16
}

func (e *AccessOutOfRangeError) Error() string {
	return fmt.Sprintf(
		"%s access at address %d, quantity %d, exceeds max address %d",
		e.Kind, e.Address, e.Quantity, e.MaxAddress)
}

// checkRange validates that quantity elements starting at address fall within
// [0, maxAddress]. All bounds checks go through here so that the configured
// maximum, not the raw buffer length, is the authority.
func checkRange(kind Kind, address uint16, quantity int, maxAddress uint16) error {
	if quantity < 1 || int(address)+quantity-1 > int(maxAddress) {
		return &AccessOutOfRangeError{
			Kind:       kind,
			Address:    address,
			Quantity:   quantity,
			MaxAddress: maxAddress,
		}
	}

	return nil
}

// A RegisterRegion is a fixed-capacity area of 16-bit registers, two bytes
// per address, big-endian. Capacity is set at construction and never changes.
type RegisterRegion struct {
	kind       Kind
	maxAddress uint16
	data       []byte
}

func newRegisterRegion(kind Kind, maxAddress uint16) *RegisterRegion {
	return &RegisterRegion{
		kind:       kind,
		maxAddress: maxAddress,
		data:       make([]byte, (int(maxAddress)+1)*2),
	}
}

// Kind returns the kind of the region.
func (r *RegisterRegion) Kind() Kind {
	return r.kind
}

// MaxAddress returns the highest addressable register.
func (r *RegisterRegion) MaxAddress() uint16 {
	return r.maxAddress
}

// Bytes returns the backing buffer as a mutable zero-copy view. The caller
// coordinates access with any in-flight cycle, see Server.Lock.
func (r *RegisterRegion) Bytes() []byte {
	return r.data
}

// Register reads the register at the given address.
func (r *RegisterRegion) Register(address uint16) (uint16, error) {
	if err := checkRange(r.kind, address, 1, r.maxAddress); err != nil {
		return 0, err
	}

	i := int(address) * 2

	return uint16(r.data[i])<<8 | uint16(r.data[i+1]), nil
}

// SetRegister writes the register at the given address.
func (r *RegisterRegion) SetRegister(address uint16, value uint16) error {
	if err := checkRange(r.kind, address, 1, r.maxAddress); err != nil {
		return err
	}

	i := int(address) * 2
	r.data[i] = byte(value >> 8)
	r.data[i+1] = byte(value)

	return nil
}

// ReadRegisters reads quantity registers starting at address and returns
// them as big-endian bytes.
func (r *RegisterRegion) ReadRegisters(
	address uint16,
	quantity int,
) ([]byte, error) {
	if err := checkRange(r.kind, address, quantity, r.maxAddress); err != nil {
		return nil, err
	}

	out := make([]byte, quantity*2)
	copy(out, r.data[int(address)*2:])

	return out, nil
}

// WriteRegisters writes len(data)/2 registers starting at address. data must
// hold an even number of big-endian bytes.
func (r *RegisterRegion) WriteRegisters(address uint16, data []byte) error {
	if len(data) == 0 || len(data)%2 != 0 {
		return fmt.Errorf(
			"%s write at address %d: data length %d is not a whole number of registers",
			r.kind, address, len(data))
	}

	quantity := len(data) / 2
	if err := checkRange(r.kind, address, quantity, r.maxAddress); err != nil {
		return err
	}

	copy(r.data[int(address)*2:], data)

	return nil
}

func (r *RegisterRegion) clear() {
	for i := range r.data {
		r.data[i] = 0
	}
}

// A BitRegion is a fixed-capacity area of single-bit values, packed eight
// per byte, least-significant bit first. Capacity is set at construction and
// never changes.
type BitRegion struct {
	kind       Kind
	maxAddress uint16
	data       []byte
}

func newBitRegion(kind Kind, maxAddress uint16) *BitRegion {
	return &BitRegion{
		kind:       kind,
		maxAddress: maxAddress,
		data:       make([]byte, (int(maxAddress)+8)/8),
	}
}

// Kind returns the kind of the region.
func (r *BitRegion) Kind() Kind {
	return r.kind
}

// MaxAddress returns the highest addressable bit.
func (r *BitRegion) MaxAddress() uint16 {
	return r.maxAddress
}

// Bytes returns the backing buffer as a mutable zero-copy view. The caller
// coordinates access with any in-flight cycle, see Server.Lock.
func (r *BitRegion) Bytes() []byte {
	return r.data
}

// Bit reads the bit at the given address.
func (r *BitRegion) Bit(address uint16) (bool, error) {
	if err := checkRange(r.kind, address, 1, r.maxAddress); err != nil {
		return false, err
	}

	return r.data[address/8]&(1<<(address%8)) != 0, nil
}

// SetBit writes the bit at the given address.
func (r *BitRegion) SetBit(address uint16, on bool) error {
	if err := checkRange(r.kind, address, 1, r.maxAddress); err != nil {
		return err
	}

	if on {
		r.data[address/8] |= 1 << (address % 8)
	} else {
		r.data[address/8] &^= 1 << (address % 8)
	}

	return nil
}

// ReadBits reads quantity bits starting at address, packed eight per byte,
// least-significant bit first, as a Modbus response carries them.
func (r *BitRegion) ReadBits(address uint16, quantity int) ([]byte, error) {
	if err := checkRange(r.kind, address, quantity, r.maxAddress); err != nil {
		return nil, err
	}

	out := make([]byte, (quantity+7)/8)
	for i := 0; i < quantity; i++ {
		addr := address + uint16(i)
		if r.data[addr/8]&(1<<(addr%8)) != 0 {
			out[i/8] |= 1 << (i % 8)
		}
	}

	return out, nil
}

// WriteBits writes quantity bits starting at address from data, which holds
// them packed eight per byte, least-significant bit first.
func (r *BitRegion) WriteBits(address uint16, quantity int, data []byte) error {
	if err := checkRange(r.kind, address, quantity, r.maxAddress); err != nil {
		return err
	}

	if len(data) < (quantity+7)/8 {
		return fmt.Errorf(
			"%s write at address %d: data holds fewer than %d bits",
			r.kind, address, quantity)
	}

	for i := 0; i < quantity; i++ {
		addr := address + uint16(i)
		if data[i/8]&(1<<(i%8)) != 0 {
			r.data[addr/8] |= 1 << (addr % 8)
		} else {
			r.data[addr/8] &^= 1 << (addr % 8)
		}
	}

	return nil
}

func (r *BitRegion) clear() {
	for i := range r.data {
		r.data[i] = 0
	}
}
