package image

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("RegisterRegion", func() {
	var region *RegisterRegion

	BeforeEach(func() {
		region = newRegisterRegion(HoldingRegisters, 99)
	})

	It("should size the buffer at two bytes per address", func() {
		Expect(region.Bytes()).To(HaveLen(200))

		full := newRegisterRegion(HoldingRegisters, 0xFFFF)
		Expect(full.Bytes()).To(HaveLen(131072))

		one := newRegisterRegion(InputRegisters, 0)
		Expect(one.Bytes()).To(HaveLen(2))
	})

	It("should read back what was written", func() {
		Expect(region.SetRegister(42, 0xBEEF)).To(Succeed())

		v, err := region.Register(42)
		Expect(err).To(BeNil())
		Expect(v).To(Equal(uint16(0xBEEF)))
	})

	It("should store registers big-endian", func() {
		Expect(region.SetRegister(0, 0x1234)).To(Succeed())

		Expect(region.Bytes()[0]).To(Equal(byte(0x12)))
		Expect(region.Bytes()[1]).To(Equal(byte(0x34)))
	})

	It("should accept a write at the configured maximum", func() {
		Expect(region.SetRegister(99, 1)).To(Succeed())
	})

	It("should reject a write beyond the configured maximum", func() {
		err := region.SetRegister(100, 1)

		var oor *AccessOutOfRangeError
		Expect(err).To(BeAssignableToTypeOf(oor))
		Expect(err.(*AccessOutOfRangeError).Kind).To(Equal(HoldingRegisters))
		Expect(err.(*AccessOutOfRangeError).Address).To(Equal(uint16(100)))
	})

	It("should reject a block that runs past the maximum", func() {
		_, err := region.ReadRegisters(98, 3)
		Expect(err).To(HaveOccurred())

		err = region.WriteRegisters(98, []byte{1, 2, 3, 4, 5, 6})
		Expect(err).To(HaveOccurred())
	})

	It("should reject a write of half a register", func() {
		Expect(region.WriteRegisters(0, []byte{1})).ToNot(Succeed())
		Expect(region.WriteRegisters(0, nil)).ToNot(Succeed())
	})

	It("should read and write register blocks", func() {
		Expect(region.WriteRegisters(10, []byte{0xAA, 0xBB, 0xCC, 0xDD})).
			To(Succeed())

		data, err := region.ReadRegisters(10, 2)
		Expect(err).To(BeNil())
		Expect(data).To(Equal([]byte{0xAA, 0xBB, 0xCC, 0xDD}))

		v, err := region.Register(11)
		Expect(err).To(BeNil())
		Expect(v).To(Equal(uint16(0xCCDD)))
	})

	It("should expose the backing buffer as a mutable view", func() {
		view := region.Bytes()
		view[0] = 0x01
		view[1] = 0x02

		v, err := region.Register(0)
		Expect(err).To(BeNil())
		Expect(v).To(Equal(uint16(0x0102)))
	})
})

var _ = Describe("BitRegion", func() {
	var region *BitRegion

	BeforeEach(func() {
		region = newBitRegion(Coils, 99)
	})

	It("should size the buffer at one bit per address", func() {
		Expect(region.Bytes()).To(HaveLen(13))

		full := newBitRegion(Coils, 0xFFFF)
		Expect(full.Bytes()).To(HaveLen(8192))

		one := newBitRegion(DiscreteInputs, 0)
		Expect(one.Bytes()).To(HaveLen(1))

		eight := newBitRegion(DiscreteInputs, 7)
		Expect(eight.Bytes()).To(HaveLen(1))

		nine := newBitRegion(DiscreteInputs, 8)
		Expect(nine.Bytes()).To(HaveLen(2))
	})

	It("should read back what was set", func() {
		Expect(region.SetBit(10, true)).To(Succeed())

		on, err := region.Bit(10)
		Expect(err).To(BeNil())
		Expect(on).To(BeTrue())

		Expect(region.SetBit(10, false)).To(Succeed())

		on, err = region.Bit(10)
		Expect(err).To(BeNil())
		Expect(on).To(BeFalse())
	})

	It("should accept an access at the configured maximum", func() {
		Expect(region.SetBit(99, true)).To(Succeed())
	})

	It("should reject an access beyond the configured maximum", func() {
		err := region.SetBit(100, true)

		var oor *AccessOutOfRangeError
		Expect(err).To(BeAssignableToTypeOf(oor))

		_, err = region.Bit(100)
		Expect(err).To(HaveOccurred())

		_, err = region.ReadBits(96, 5)
		Expect(err).To(HaveOccurred())
	})

	It("should pack read bits least-significant first", func() {
		Expect(region.SetBit(8, true)).To(Succeed())
		Expect(region.SetBit(10, true)).To(Succeed())

		data, err := region.ReadBits(8, 3)
		Expect(err).To(BeNil())
		Expect(data).To(Equal([]byte{0b101}))
	})

	It("should write packed bits", func() {
		Expect(region.WriteBits(4, 3, []byte{0b110})).To(Succeed())

		for addr, want := range map[uint16]bool{4: false, 5: true, 6: true} {
			on, err := region.Bit(addr)
			Expect(err).To(BeNil())
			Expect(on).To(Equal(want), "bit %d", addr)
		}
	})

	It("should reject a write with too little data", func() {
		Expect(region.WriteBits(0, 9, []byte{0xFF})).ToNot(Succeed())
	})
})
