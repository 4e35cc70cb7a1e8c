package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("WaitQueue", func() {
	var q *waitQueue

	BeforeEach(func() {
		q = newWaitQueue()
	})

	It("should pop waits in time order", func() {
		q.Push(timedWait{at: 4})
		q.Push(timedWait{at: 1})
		q.Push(timedWait{at: 3})

		Expect(q.Len()).To(Equal(3))
		Expect(q.Pop().at).To(Equal(VTimeInFs(1)))
		Expect(q.Pop().at).To(Equal(VTimeInFs(3)))
		Expect(q.Pop().at).To(Equal(VTimeInFs(4)))
	})

	It("should peek without removing", func() {
		q.Push(timedWait{at: 2})
		q.Push(timedWait{at: 5})

		Expect(q.Peek().at).To(Equal(VTimeInFs(2)))
		Expect(q.Len()).To(Equal(2))
	})
})

var _ = Describe("VTimeInFs", func() {
	It("should round second intervals to integral femtoseconds", func() {
		Expect(SecondsToFs(1e-15)).To(Equal(VTimeInFs(1)))
		Expect(SecondsToFs(2.5e-9)).To(Equal(VTimeInFs(2_500_000)))
		Expect(SecondsToFs(0)).To(Equal(VTimeInFs(0)))
	})

	It("should convert periods of common frequencies", func() {
		Expect((1 * GHz).Period()).To(Equal(VTimeInFs(1_000_000)))
		Expect((100 * MHz).Period()).To(Equal(VTimeInFs(10_000_000)))
	})
})
