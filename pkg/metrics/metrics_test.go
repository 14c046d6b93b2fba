package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			manager := NewManager(
				WithNamespace("test"),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors are registered under the namespace with the labels", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				manager.balances.Inc()

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() != "test_roster_balances_total" {
						continue
					}
					found = true
					labels := f.GetMetric()[0].GetLabel()
					So(len(labels), ShouldEqual, 1)
					So(labels[0].GetName(), ShouldEqual, "env")
					So(labels[0].GetValue(), ShouldEqual, "test")
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When invalid option values are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithCustomLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, defaultNamespace)
				So(manager.customLabels, ShouldBeEmpty)
			})
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the package recorders are reconfigured", t, func() {
		Reset(func() { Configure() })

		Convey("When domain recording is disabled", func() {
			Configure(WithMetricsEnabled(false))
			RecordBalance()
			RecordSimulation("A")

			Convey("Then domain recorders stay at zero", func() {
				So(testutil.ToFloat64(globalManager.balances), ShouldEqual, 0)
				So(testutil.ToFloat64(globalManager.simulations.WithLabelValues("A")), ShouldEqual, 0)
			})

			Convey("And gauges still record", func() {
				UpdateRosterSize(4)
				So(testutil.ToFloat64(globalManager.rosterSize), ShouldEqual, 4)
			})
		})

		Convey("When a namespace and labels are set", func() {
			before := GetRegistry()
			Configure(WithNamespace("club"), WithCustomLabels(map[string]string{"site": "north"}))
			RecordBalance()

			Convey("Then the registry is replaced and serves the renamed collectors", func() {
				So(GetRegistry(), ShouldNotEqual, before)
				n, err := testutil.GatherAndCount(GetRegistry(), "club_roster_balances_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
				n, err = testutil.GatherAndCount(GetRegistry(), "squad_roster_balances_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 0)
			})
		})
	})
}

func TestDomainRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording balances and failures", func() {
			before := testutil.ToFloat64(globalManager.balances)
			RecordBalance()
			RecordBalanceFailure("insufficient_players")

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.balances), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.balanceFailures.WithLabelValues("insufficient_players")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording simulations", func() {
			before := testutil.ToFloat64(globalManager.simulations.WithLabelValues("A"))
			RecordSimulation("A")

			Convey("Then the winner label is incremented", func() {
				So(testutil.ToFloat64(globalManager.simulations.WithLabelValues("A")), ShouldEqual, before+1)
			})
		})

		Convey("When updating roster gauges", func() {
			UpdateRosterSize(12)
			UpdateTeamCount(3)
			UpdateQueueSize(7)

			Convey("Then gauges reflect the latest value", func() {
				So(testutil.ToFloat64(globalManager.rosterSize), ShouldEqual, 12)
				So(testutil.ToFloat64(globalManager.teamCount), ShouldEqual, 3)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 7)
			})
		})

		Convey("When recording the remaining series", func() {
			So(func() {
				ObservePlayerRating(3.4)
				RecordRatingProcessed()
				RecordRatingDuplicate()
				RecordRatingRejected()
				UpdateQueueCapacity(100)
				RecordQueueEnqueue()
				RecordQueueEnqueueError("full")
				UpdateWorkerCount(4)
				RecordWorkerProcessingLatency(1.5)
				RecordWorkerError()
				RecordStoreLatency("get_player", 0.2)
				RecordStoreError("get_player")
				RecordCacheHit()
				RecordCacheMiss()
				RecordHTTPRequest("players", "GET", "200")
				RecordHTTPRequestDuration("players", "GET", "200", 3)
				RecordErrorByComponent("api", "not_found")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("The package registry exposes squad metrics", t, func() {
		RecordBalance()
		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)

		found := false
		for _, f := range families {
			if f.GetName() == "squad_roster_balances_total" {
				found = true
			}
		}
		So(found, ShouldBeTrue)
	})
}
