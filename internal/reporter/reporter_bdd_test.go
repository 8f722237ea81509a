package reporter_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/actionsum/focusday/internal/clock"
	"github.com/actionsum/focusday/internal/config"
	"github.com/actionsum/focusday/internal/models"
	"github.com/actionsum/focusday/internal/reporter"
	"github.com/actionsum/focusday/internal/store"
)

var _ = Describe("Reporter", func() {
	var (
		ctx    context.Context
		tmpDir string
		st     *store.FileStore
		rep    *reporter.Reporter
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		tmpDir, err = os.MkdirTemp("", "focusday-reporter-*")
		Expect(err).NotTo(HaveOccurred())

		clk := clock.NewFake(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
		st, err = store.NewFileStore(tmpDir, time.UTC, clk, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		cfg := config.Default()
		cfg.Report.TimeZone = "UTC"
		rep, err = reporter.New(cfg, st, clk, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("GetStatsByDate", func() {
		Context("when the day record is corrupt", func() {
			It("should degrade to empty stats without an error", func() {
				err := os.WriteFile(filepath.Join(tmpDir, "2024-03-09.json"), []byte("{broken"), 0644)
				Expect(err).NotTo(HaveOccurred())

				got, err := rep.GetStatsByDate(ctx, "2024-03-09")
				Expect(err).NotTo(HaveOccurred())
				Expect(got).To(BeEmpty())
			})
		})

		Context("when the date is malformed", func() {
			It("should fail loudly", func() {
				_, err := rep.GetStatsByDate(ctx, "March 9th")
				Expect(err).To(MatchError(reporter.ErrInvalidInput))
			})
		})
	})

	Describe("GetWeekly", func() {
		Context("when more than seven days are recorded", func() {
			It("should only roll up the seven most recent", func() {
				for day := 1; day <= 9; day++ {
					date := time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC).Format(models.DateLayout)
					err := st.Append(ctx, models.Session{App: "Editor", Title: "x", Duration: 60, Date: date})
					Expect(err).NotTo(HaveOccurred())
				}

				week := rep.GetWeekly(ctx)
				Expect(week.Dates).To(HaveLen(7))
				Expect(week.Dates[0]).To(Equal("2024-03-09"))
				Expect(week.TotalTime).To(Equal(int64(420)))
				Expect(week.AverageDaily).To(Equal(int64(60)))
			})
		})
	})
})
