package request_test

import (
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/materialflow/mrs-management/internal/request"
)

type mockDocNoSource struct {
	latest    string
	sourceErr error
}

func (m *mockDocNoSource) LatestDocNo(series, yearToken string) (string, bool, error) {
	if m.sourceErr != nil {
		return "", false, m.sourceErr
	}
	if m.latest == "" {
		return "", false, nil
	}
	return m.latest, true, nil
}

var _ = Describe("DocNoGenerator", func() {
	var (
		source    *mockDocNoSource
		generator *request.DocNoGenerator
		yearToken string
	)

	BeforeEach(func() {
		source = &mockDocNoSource{}
		generator = request.NewDocNoGenerator(source)
		yearToken = time.Now().Format("06")
	})

	It("starts each series-year sequence at 00001", func() {
		docNo, err := generator.Next(request.SeriesPurchaseOrder)

		Expect(err).ToNot(HaveOccurred())
		Expect(docNo).To(Equal(fmt.Sprintf("PO-%s-00001", yearToken)))
	})

	It("increments past the highest existing number", func() {
		source.latest = fmt.Sprintf("PO-%s-00007", yearToken)

		docNo, err := generator.Next(request.SeriesPurchaseOrder)

		Expect(err).ToNot(HaveOccurred())
		Expect(docNo).To(Equal(fmt.Sprintf("PO-%s-00008", yearToken)))
	})

	It("keeps series sequences independent", func() {
		source.latest = fmt.Sprintf("JO-%s-00042", yearToken)

		docNo, err := generator.Next(request.SeriesJobOrder)

		Expect(err).ToNot(HaveOccurred())
		Expect(docNo).To(Equal(fmt.Sprintf("JO-%s-00043", yearToken)))
	})

	It("restarts at 00001 when the latest number has too few segments", func() {
		source.latest = "PO-garbage"

		docNo, err := generator.Next(request.SeriesPurchaseOrder)

		Expect(err).ToNot(HaveOccurred())
		Expect(docNo).To(Equal(fmt.Sprintf("PO-%s-00001", yearToken)))
	})

	It("restarts at 00001 when the sequence segment is not numeric", func() {
		source.latest = fmt.Sprintf("PO-%s-xyz", yearToken)

		docNo, err := generator.Next(request.SeriesPurchaseOrder)

		Expect(err).ToNot(HaveOccurred())
		Expect(docNo).To(Equal(fmt.Sprintf("PO-%s-00001", yearToken)))
	})

	It("surfaces source failures", func() {
		source.sourceErr = errors.New("connection refused")

		_, err := generator.Next(request.SeriesPurchaseOrder)

		Expect(err).To(HaveOccurred())
	})
})
