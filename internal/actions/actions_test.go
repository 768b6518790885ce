package actions_test

import (
	"context"
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/container-check/internal/actions"
	"github.com/nicholas-fedor/container-check/internal/actions/mocks"
	"github.com/nicholas-fedor/container-check/pkg/session"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

// recordingNotifier keeps every summary it is asked to send.
type recordingNotifier struct {
	sent []types.Summary
	err  error
}

func (n *recordingNotifier) Send(summary types.Summary) error {
	n.sent = append(n.sent, summary)

	return n.err
}

func (n *recordingNotifier) GetNames() []string { return []string{"recorder"} }

func (n *recordingNotifier) GetURLs() []string { return []string{"recorder://"} }

var _ = ginkgo.Describe("RunChecksWithNotifications", func() {
	baseline := types.NewBaselineSet([]types.PackageID{"foo-1.0-1.x86_64", "bar-2.1-1.x86_64"})
	params := actions.RunParams{
		Audit:       auditParams,
		Update:      updateParams,
		RuntimeName: "mock",
	}

	ginkgo.It("should succeed without updates when nothing is stale", func() {
		runtime := mocks.NewRuntime(map[string]mocks.Image{
			"c1": {Packages: []string{"foo-1.0-1.x86_64"}},
		})
		notifier := &recordingNotifier{}

		report := actions.RunChecksWithNotifications(
			context.Background(), runtime, notifier, []string{"c1"}, baseline, params,
		)

		gomega.Expect(report.Succeeded()).To(gomega.BeTrue())
		gomega.Expect(report.ExitCode()).To(gomega.Equal(0))
		gomega.Expect(report.Audited()).To(gomega.Equal(1))
		gomega.Expect(report.RunID()).ToNot(gomega.BeEmpty())
		gomega.Expect(report.Metadata().Runtime).To(gomega.Equal("mock"))
		gomega.Expect(report.Metadata().BaselineSize).To(gomega.Equal(2))
		gomega.Expect(notifier.sent).To(gomega.HaveLen(1))
	})

	ginkgo.It("should fail when stale containers are left without an update", func() {
		runtime := mocks.NewRuntime(map[string]mocks.Image{
			"c1": {Packages: []string{"foo-1.0-1.x86_64", "bar-2.0-1.x86_64"}},
		})

		report := actions.RunChecksWithNotifications(
			context.Background(), runtime, nil, []string{"c1"}, baseline, params,
		)

		gomega.Expect(report.Succeeded()).To(gomega.BeFalse())
		gomega.Expect(report.StaleContainers()).To(gomega.Equal(map[string][]types.PackageID{
			"c1": {"bar-2.0-1.x86_64"},
		}))
		gomega.Expect(report.StaleRemaining()).To(gomega.Equal([]string{"c1"}))
		gomega.Expect(runtime.Commits()).To(gomega.BeEmpty())
	})

	ginkgo.It("should update stale containers and verify them", func() {
		runtime := mocks.NewRuntime(map[string]mocks.Image{
			"c1": {
				Packages:        []string{"foo-1.0-1.x86_64", "bar-2.0-1.x86_64"},
				UpdatedPackages: []string{"foo-1.0-1.x86_64", "bar-2.1-1.x86_64"},
			},
			"c2": {Packages: []string{"foo-1.0-1.x86_64"}},
		})

		withUpdate := params
		withUpdate.UpdateRequested = true
		withUpdate.Verify = true

		report := actions.RunChecksWithNotifications(
			context.Background(), runtime, nil, []string{"c1", "c2"}, baseline, withUpdate,
		)

		gomega.Expect(report.Succeeded()).To(gomega.BeTrue())
		gomega.Expect(report.UpdatedContainers()).To(gomega.Equal([]string{"c1"}))
		gomega.Expect(report.FailedUpdates()).To(gomega.BeEmpty())
		gomega.Expect(report.StaleRemaining()).To(gomega.BeEmpty())
		gomega.Expect(runtime.Runs()).To(gomega.HaveLen(4))
	})

	ginkgo.It("should fail when verification still finds stale packages", func() {
		runtime := mocks.NewRuntime(map[string]mocks.Image{
			"c1": {
				Packages:        []string{"bar-2.0-1.x86_64"},
				UpdatedPackages: []string{"bar-2.0-1.x86_64"},
			},
		})

		withUpdate := params
		withUpdate.UpdateRequested = true
		withUpdate.Verify = true

		report := actions.RunChecksWithNotifications(
			context.Background(), runtime, nil, []string{"c1"}, baseline, withUpdate,
		)

		gomega.Expect(report.Succeeded()).To(gomega.BeFalse())
		gomega.Expect(report.StaleRemaining()).To(gomega.Equal([]string{"c1"}))
	})

	ginkgo.It("should fail when an update transaction fails", func() {
		runtime := mocks.NewRuntime(map[string]mocks.Image{
			"c1": {Packages: []string{"bar-2.0-1.x86_64"}, UpdateExitCode: 1},
			"c2": {Packages: []string{"baz-1-1.noarch"}},
		})

		withUpdate := params
		withUpdate.UpdateRequested = true

		report := actions.RunChecksWithNotifications(
			context.Background(), runtime, nil, []string{"c1", "c2"}, baseline, withUpdate,
		)

		gomega.Expect(report.Succeeded()).To(gomega.BeFalse())
		gomega.Expect(report.ExitCode()).To(gomega.Equal(1))
		gomega.Expect(report.FailedUpdates()).To(gomega.Equal([]string{"c1"}))
		gomega.Expect(report.UpdatedContainers()).To(gomega.Equal([]string{"c2"}))
	})

	ginkgo.It("should skip the update phase when an inspection failed", func() {
		runtime := mocks.NewRuntime(map[string]mocks.Image{
			"c1": {Packages: []string{"bar-2.0-1.x86_64"}},
			"c2": {ListErr: errors.New("image not found")},
		})

		withUpdate := params
		withUpdate.UpdateRequested = true

		report := actions.RunChecksWithNotifications(
			context.Background(), runtime, nil, []string{"c1", "c2"}, baseline, withUpdate,
		)

		gomega.Expect(report.Succeeded()).To(gomega.BeFalse())
		gomega.Expect(report.InspectionFailures()).To(gomega.Equal([]string{"c2"}))
		gomega.Expect(runtime.Commits()).To(gomega.BeEmpty())
		gomega.Expect(runtime.Runs()).To(gomega.HaveLen(2))
	})

	ginkgo.It("should return the report even when the notification fails", func() {
		runtime := mocks.NewRuntime(map[string]mocks.Image{"c1": {Packages: []string{"foo-1.0-1.x86_64"}}})
		notifier := &recordingNotifier{err: errors.New("smtp unavailable")}

		report := actions.RunChecksWithNotifications(
			context.Background(), runtime, notifier, []string{"c1"}, baseline, params,
		)

		gomega.Expect(report).ToNot(gomega.BeNil())
		gomega.Expect(notifier.sent).To(gomega.HaveLen(1))
		gomega.Expect(notifier.sent[0].RunID()).To(gomega.Equal(report.RunID()))
	})

	ginkgo.It("should record per-container states", func() {
		runtime := mocks.NewRuntime(map[string]mocks.Image{
			"c1": {Packages: []string{"bar-2.0-1.x86_64"}},
			"c2": {Packages: []string{"foo-1.0-1.x86_64"}},
		})

		report := actions.RunChecksWithNotifications(
			context.Background(), runtime, nil, []string{"c1", "c2"}, baseline, params,
		)

		all := report.All()
		gomega.Expect(all).To(gomega.HaveLen(2))
		gomega.Expect(all[0].Name()).To(gomega.Equal("c1"))
		gomega.Expect(all[0].State()).To(gomega.Equal(session.StaleState))
		gomega.Expect(all[1].State()).To(gomega.Equal(session.FreshState))
	})
})
