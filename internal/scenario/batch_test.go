package scenario_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bombprop/internal/config"
	"github.com/san-kum/bombprop/internal/scenario"
)

var _ = Describe("RunBatch", func() {
	load := func(path string) *scenario.Scenario {
		sc, err := scenario.LoadScenario(path)
		Expect(err).NotTo(HaveOccurred())
		return sc
	}

	It("runs every scenario and keeps their order", func() {
		scs := []*scenario.Scenario{
			load("testdata/defuse.yaml"),
			load("testdata/countdown.yaml"),
		}

		outcomes := scenario.RunBatch(context.Background(), scs, config.DefaultConfig(), nil)
		Expect(outcomes).To(HaveLen(2))
		Expect(outcomes[0].Scenario.Name).To(Equal(scs[0].Name))
		Expect(outcomes[1].Scenario.Name).To(Equal(scs[1].Name))
		for _, o := range outcomes {
			Expect(o.Err).NotTo(HaveOccurred())
			Expect(o.Result.Steps).To(BeNumerically(">", 0))
		}
		Expect(scenario.Failed(outcomes)).To(BeZero())
	})

	It("reports failed expectations per scenario", func() {
		bad, err := scenario.Parse([]byte(`
name: wrong
duration_ms: 100
steps:
  - {at_ms: 0, command: switch.set, arg: "on"}
expect:
  armed: false
`))
		Expect(err).NotTo(HaveOccurred())

		outcomes := scenario.RunBatch(context.Background(),
			[]*scenario.Scenario{bad, load("testdata/countdown.yaml")},
			config.DefaultConfig(), nil)
		Expect(outcomes[0].Err).To(MatchError(scenario.ErrExpectation))
		Expect(outcomes[1].Err).NotTo(HaveOccurred())
		Expect(scenario.Failed(outcomes)).To(Equal(1))
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		outcomes := scenario.RunBatch(ctx, []*scenario.Scenario{load("testdata/defuse.yaml")}, config.DefaultConfig(), nil)
		Expect(outcomes[0].Err).To(MatchError(context.Canceled))
	})
})
