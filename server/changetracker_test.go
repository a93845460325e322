package server

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ChangeTracker", func() {
	var tracker *ChangeTracker

	BeforeEach(func() {
		tracker = NewChangeTracker()
	})

	It("should keep the order of first occurrence without duplicates", func() {
		tracker.RecordRegisterChange(7)
		tracker.RecordRegisterChange(3)
		tracker.RecordRegisterChange(7)
		tracker.RecordRegisterChange(1)

		Expect(tracker.RegisterChanges()).To(Equal([]uint16{7, 3, 1}))
	})

	It("should track coils and registers separately", func() {
		tracker.RecordRegisterChange(3)
		tracker.RecordCoilChange(3)
		tracker.RecordCoilChange(5)

		Expect(tracker.RegisterChanges()).To(Equal([]uint16{3}))
		Expect(tracker.CoilChanges()).To(Equal([]uint16{3, 5}))
	})

	It("should forget everything on Reset", func() {
		tracker.RecordRegisterChange(3)
		tracker.RecordCoilChange(5)

		tracker.Reset()

		Expect(tracker.RegisterChanges()).To(BeEmpty())
		Expect(tracker.CoilChanges()).To(BeEmpty())

		tracker.RecordRegisterChange(3)
		Expect(tracker.RegisterChanges()).To(Equal([]uint16{3}))
	})

	It("should drop recordings while disabled", func() {
		tracker.SetEnabled(false)

		tracker.RecordRegisterChange(3)
		tracker.RecordCoilChange(5)

		Expect(tracker.RegisterChanges()).To(BeEmpty())
		Expect(tracker.CoilChanges()).To(BeEmpty())

		tracker.SetEnabled(true)
		tracker.RecordRegisterChange(3)
		Expect(tracker.RegisterChanges()).To(Equal([]uint16{3}))
	})
})
