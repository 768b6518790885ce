package actions_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/container-check/internal/actions"
	"github.com/nicholas-fedor/container-check/internal/actions/mocks"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

var updateParams = types.UpdateParams{
	Workers:           4,
	UpdateCommand:     []string{"yum", "-y", "update"},
	CommitMessage:     "automatic yum update",
	TransactionPrefix: "yum-update-",
	Mounts:            []types.Mount{{Source: "/srv/etc/yum.repos.d", Target: "/etc/yum.repos.d"}},
	NetworkMode:       "host",
	User:              "root",
}

var _ = ginkgo.Describe("the update phase", func() {
	task := types.UpdateTask{Container: "c1", Transaction: "yum-update-0"}

	ginkgo.Describe("UpdateContainer", func() {
		ginkgo.It("should update, commit and clean up", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{"c1": {}})

			outcome := actions.UpdateContainer(context.Background(), runtime, task, updateParams)

			gomega.Expect(outcome.Succeeded).To(gomega.BeTrue())
			gomega.Expect(outcome.Failure).To(gomega.Equal(types.FailureNone))
			gomega.Expect(outcome.ImageID).To(gomega.HavePrefix("sha256:"))
			gomega.Expect(outcome.Err).ToNot(gomega.HaveOccurred())
			gomega.Expect(runtime.Commits()).To(gomega.Equal([]string{"yum-update-0"}))
			gomega.Expect(runtime.Committed("c1")).To(gomega.BeTrue())
			gomega.Expect(runtime.Removes("yum-update-0")).To(gomega.Equal(2))
			gomega.Expect(runtime.Live()).To(gomega.BeEmpty())
		})

		ginkgo.It("should run the update in a named container with the transaction options", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{"c1": {}})

			actions.UpdateContainer(context.Background(), runtime, task, updateParams)

			runs := runtime.Runs()
			gomega.Expect(runs).To(gomega.HaveLen(1))
			gomega.Expect(runs[0]).To(gomega.Equal(types.RunSpec{
				Image:       "c1",
				Command:     []string{"yum", "-y", "update"},
				Name:        "yum-update-0",
				AutoRemove:  false,
				Mounts:      []types.Mount{{Source: "/srv/etc/yum.repos.d", Target: "/etc/yum.repos.d"}},
				NetworkMode: "host",
				User:        "root",
			}))
		})

		ginkgo.It("should never commit when the update step exits non-zero", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{
				"c1": {UpdateExitCode: 1, Stderr: "No more mirrors to try"},
			})

			outcome := actions.UpdateContainer(context.Background(), runtime, task, updateParams)

			gomega.Expect(outcome.Succeeded).To(gomega.BeFalse())
			gomega.Expect(outcome.Container).To(gomega.Equal("c1"))
			gomega.Expect(outcome.Failure).To(gomega.Equal(types.FailureUpdateStep))
			gomega.Expect(runtime.Commits()).To(gomega.BeEmpty())
			gomega.Expect(runtime.Removes("yum-update-0")).To(gomega.BeNumerically(">=", 1))
			gomega.Expect(runtime.Live()).To(gomega.BeEmpty())
			gomega.Expect(runtime.Committed("c1")).To(gomega.BeFalse())
		})

		ginkgo.It("should clean up when the update container cannot run", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{
				"c1": {UpdateErr: errors.New("OCI runtime create failed")},
			})

			outcome := actions.UpdateContainer(context.Background(), runtime, task, updateParams)

			gomega.Expect(outcome.Failure).To(gomega.Equal(types.FailureUpdateStep))
			gomega.Expect(outcome.Err).To(gomega.MatchError(gomega.ContainSubstring("OCI runtime create failed")))
			gomega.Expect(runtime.Commits()).To(gomega.BeEmpty())
			gomega.Expect(runtime.Live()).To(gomega.BeEmpty())
		})

		ginkgo.It("should surface commit failures distinctly and still clean up", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{
				"c1": {CommitErr: errors.New("no space left on device")},
			})

			outcome := actions.UpdateContainer(context.Background(), runtime, task, updateParams)

			gomega.Expect(outcome.Succeeded).To(gomega.BeFalse())
			gomega.Expect(outcome.Failure).To(gomega.Equal(types.FailureCommit))
			gomega.Expect(outcome.Err).To(gomega.MatchError(gomega.ContainSubstring("no space left on device")))
			gomega.Expect(runtime.Commits()).To(gomega.HaveLen(1))
			gomega.Expect(runtime.Live()).To(gomega.BeEmpty())
		})

		ginkgo.It("should remove a leftover container before updating", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{"c1": {}})
			runtime.Leave("yum-update-0")

			outcome := actions.UpdateContainer(context.Background(), runtime, task, updateParams)

			gomega.Expect(outcome.Succeeded).To(gomega.BeTrue())
			gomega.Expect(runtime.Removes("yum-update-0")).To(gomega.Equal(2))
			gomega.Expect(runtime.Live()).To(gomega.BeEmpty())
		})

		ginkgo.It("should not fail the transaction when cleanup fails", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{"c1": {}})
			runtime.RemoveErrs["yum-update-0"] = errors.New("device or resource busy")

			outcome := actions.UpdateContainer(context.Background(), runtime, task, updateParams)

			gomega.Expect(outcome.Succeeded).To(gomega.BeTrue())
			gomega.Expect(runtime.Removes("yum-update-0")).To(gomega.Equal(2))
		})

		ginkgo.It("should clean up after the deadline expires", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{"c1": {}})
			runtime.Delay = time.Second

			params := updateParams
			params.Timeout = 10 * time.Millisecond

			outcome := actions.UpdateContainer(context.Background(), runtime, task, params)

			gomega.Expect(outcome.Failure).To(gomega.Equal(types.FailureUpdateStep))
			gomega.Expect(outcome.Err).To(gomega.MatchError(context.DeadlineExceeded))
			gomega.Expect(runtime.Commits()).To(gomega.BeEmpty())
			gomega.Expect(runtime.Removes("yum-update-0")).To(gomega.Equal(2))
		})

		ginkgo.It("should clean up on a detached context when the caller has already cancelled", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{"c1": {}})
			runtime.Leave("yum-update-0")

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			outcome := actions.UpdateContainer(ctx, runtime, task, updateParams)

			gomega.Expect(outcome.Succeeded).To(gomega.BeFalse())
			gomega.Expect(outcome.Err).To(gomega.MatchError(context.Canceled))
			gomega.Expect(runtime.Removes("yum-update-0")).To(gomega.Equal(2))
			gomega.Expect(runtime.Live()).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Transactions", func() {
		ginkgo.It("should number containers from zero in the given order", func() {
			gomega.Expect(actions.Transactions([]string{"a", "b", "c"}, "yum-update-")).To(gomega.Equal([]types.UpdateTask{
				{Container: "a", Transaction: "yum-update-0"},
				{Container: "b", Transaction: "yum-update-1"},
				{Container: "c", Transaction: "yum-update-2"},
			}))
		})
	})

	ginkgo.Describe("UpdateStale", func() {
		ginkgo.It("should give every concurrent transaction a unique name", func() {
			images := map[string]mocks.Image{}
			stale := types.StaleReport{}

			for i := range 16 {
				name := fmt.Sprintf("registry.example.com/app-%02d:1", i)
				images[name] = mocks.Image{}
				stale[name] = []types.PackageID{"bar-2.0-1.x86_64"}
			}

			runtime := mocks.NewRuntime(images)
			runtime.Delay = 5 * time.Millisecond

			result := actions.UpdateStale(context.Background(), runtime, stale, updateParams)

			gomega.Expect(result.Succeeded).To(gomega.BeTrue())
			gomega.Expect(result.Outcomes).To(gomega.HaveLen(16))

			names := map[string]bool{}
			for _, outcome := range result.Outcomes {
				gomega.Expect(names).ToNot(gomega.HaveKey(outcome.Transaction))
				names[outcome.Transaction] = true
			}

			gomega.Expect(runtime.Live()).To(gomega.BeEmpty())
			gomega.Expect(runtime.Peak()).To(gomega.BeNumerically("<=", 4))
		})

		ginkgo.It("should assign the same names on every run", func() {
			stale := types.StaleReport{"c2": {"x"}, "c1": {"y"}, "c3": {"z"}}
			images := map[string]mocks.Image{"c1": {}, "c2": {}, "c3": {}}

			first := actions.UpdateStale(context.Background(), mocks.NewRuntime(images), stale, updateParams)
			second := actions.UpdateStale(context.Background(), mocks.NewRuntime(images), stale, updateParams)

			for name, outcome := range first.Outcomes {
				gomega.Expect(second.Outcomes[name].Transaction).To(gomega.Equal(outcome.Transaction))
			}

			gomega.Expect(first.Outcomes["c1"].Transaction).To(gomega.Equal("yum-update-0"))
			gomega.Expect(first.Outcomes["c3"].Transaction).To(gomega.Equal("yum-update-2"))
		})

		ginkgo.It("should AND the outcomes without cross-container interference", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{
				"c1": {},
				"c2": {UpdateExitCode: 1},
				"c3": {CommitErr: errors.New("commit refused")},
				"c4": {},
			})
			stale := types.StaleReport{"c1": {"a"}, "c2": {"b"}, "c3": {"c"}, "c4": {"d"}}

			result := actions.UpdateStale(context.Background(), runtime, stale, updateParams)

			gomega.Expect(result.Succeeded).To(gomega.BeFalse())
			gomega.Expect(result.Failed).To(gomega.Equal([]string{"c2", "c3"}))
			gomega.Expect(result.Outcomes["c1"].Succeeded).To(gomega.BeTrue())
			gomega.Expect(result.Outcomes["c4"].Succeeded).To(gomega.BeTrue())
			gomega.Expect(result.Outcomes["c2"].Failure).To(gomega.Equal(types.FailureUpdateStep))
			gomega.Expect(result.Outcomes["c3"].Failure).To(gomega.Equal(types.FailureCommit))
			gomega.Expect(result.Updated()).To(gomega.Equal([]string{"c1", "c4"}))
			gomega.Expect(runtime.Live()).To(gomega.BeEmpty())
		})

		ginkgo.It("should succeed trivially with nothing to update", func() {
			result := actions.UpdateStale(context.Background(), mocks.NewRuntime(nil), types.StaleReport{}, updateParams)

			gomega.Expect(result.Succeeded).To(gomega.BeTrue())
			gomega.Expect(result.Outcomes).To(gomega.BeEmpty())
		})
	})
})
