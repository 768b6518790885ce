package actions_test

import (
	"context"
	"errors"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/nicholas-fedor/container-check/internal/actions"
	"github.com/nicholas-fedor/container-check/internal/actions/mocks"
	"github.com/nicholas-fedor/container-check/pkg/types"
)

var auditParams = types.AuditParams{
	Workers:     4,
	ListCommand: []string{"rpm", "-qa"},
	User:        "root",
}

var _ = ginkgo.Describe("the audit phase", func() {
	baseline := types.NewBaselineSet([]types.PackageID{"foo-1.0-1.x86_64"})

	ginkgo.Describe("InspectContainer", func() {
		ginkgo.It("should run the list command as root in an auto-removed container", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{
				"c1": {Packages: []string{"foo-1.0-1.x86_64", "bar-2.0-1.x86_64"}},
			})

			record := actions.InspectContainer(context.Background(), runtime, "c1", auditParams)

			gomega.Expect(record.Succeeded).To(gomega.BeTrue())
			gomega.Expect(record.ExitCode).To(gomega.Equal(0))
			gomega.Expect(record.Packages).To(gomega.Equal([]types.PackageID{"foo-1.0-1.x86_64", "bar-2.0-1.x86_64"}))

			runs := runtime.Runs()
			gomega.Expect(runs).To(gomega.HaveLen(1))
			gomega.Expect(runs[0].AutoRemove).To(gomega.BeTrue())
			gomega.Expect(runs[0].Name).To(gomega.BeEmpty())
			gomega.Expect(runs[0].User).To(gomega.Equal("root"))
			gomega.Expect(runs[0].Command).To(gomega.Equal([]string{"rpm", "-qa"}))
		})

		ginkgo.It("should record a non-zero exit as a failure with its stderr", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{
				"c1": {ListExitCode: 127, Stderr: "rpm: command not found"},
			})

			record := actions.InspectContainer(context.Background(), runtime, "c1", auditParams)

			gomega.Expect(record.Succeeded).To(gomega.BeFalse())
			gomega.Expect(record.ExitCode).To(gomega.Equal(127))
			gomega.Expect(record.Stderr).To(gomega.Equal("rpm: command not found"))
			gomega.Expect(record.Err).To(gomega.MatchError(gomega.ContainSubstring("exit code 127")))
			gomega.Expect(record.Packages).To(gomega.BeEmpty())
		})

		ginkgo.It("should keep the partial package list of a failed listing", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{
				"c1": {Packages: []string{"foo-1.0-1.x86_64", "bar-2.0-1.x86_64"}, ListExitCode: 1},
			})

			record := actions.InspectContainer(context.Background(), runtime, "c1", auditParams)

			gomega.Expect(record.Succeeded).To(gomega.BeFalse())
			gomega.Expect(record.ExitCode).To(gomega.Equal(1))
			gomega.Expect(record.Err).To(gomega.MatchError(gomega.ContainSubstring("exit code 1")))
			gomega.Expect(record.Packages).To(gomega.Equal([]types.PackageID{"foo-1.0-1.x86_64", "bar-2.0-1.x86_64"}))
		})

		ginkgo.It("should record a runtime error as a failure", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{
				"c1": {ListErr: errors.New("exec format error")},
			})

			record := actions.InspectContainer(context.Background(), runtime, "c1", auditParams)

			gomega.Expect(record.Succeeded).To(gomega.BeFalse())
			gomega.Expect(record.ExitCode).To(gomega.Equal(-1))
			gomega.Expect(record.Err).To(gomega.MatchError(gomega.ContainSubstring("exec format error")))
		})

		ginkgo.It("should fail when the deadline expires", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{"c1": {Packages: []string{"a"}}})
			runtime.Delay = time.Second

			params := auditParams
			params.Timeout = 10 * time.Millisecond

			record := actions.InspectContainer(context.Background(), runtime, "c1", params)

			gomega.Expect(record.Succeeded).To(gomega.BeFalse())
			gomega.Expect(record.Err).To(gomega.MatchError(context.DeadlineExceeded))
		})
	})

	ginkgo.Describe("Diff", func() {
		ginkgo.It("should keep stale packages in reported order", func() {
			stale := actions.Diff([]types.ContainerRecord{{
				Container: "c1",
				Succeeded: true,
				Packages:  []types.PackageID{"z-1-1.noarch", "foo-1.0-1.x86_64", "a-1-1.noarch", "m-1-1.noarch"},
			}}, baseline)

			gomega.Expect(stale).To(gomega.Equal(types.StaleReport{
				"c1": {"z-1-1.noarch", "a-1-1.noarch", "m-1-1.noarch"},
			}))
		})

		ginkgo.It("should leave out containers without stale packages", func() {
			stale := actions.Diff([]types.ContainerRecord{
				{Container: "c2", Succeeded: true, Packages: []types.PackageID{"foo-1.0-1.x86_64"}},
				{Container: "c3", Succeeded: true},
			}, baseline)

			gomega.Expect(stale).To(gomega.BeEmpty())
		})

		ginkgo.It("should ignore failed records and blank packages", func() {
			stale := actions.Diff([]types.ContainerRecord{
				{Container: "c1", Succeeded: false, Packages: []types.PackageID{"bar-2.0-1.x86_64"}},
				{Container: "c2", Succeeded: true, Packages: []types.PackageID{"", "  "}},
			}, baseline)

			gomega.Expect(stale).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Audit", func() {
		ginkgo.It("should report c1 stale with bar and leave c2 out", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{
				"c1": {Packages: []string{"foo-1.0-1.x86_64", "bar-2.0-1.x86_64"}},
				"c2": {Packages: []string{"foo-1.0-1.x86_64"}},
			})

			result := actions.Audit(context.Background(), runtime, []string{"c1", "c2"}, baseline, auditParams)

			gomega.Expect(result.Succeeded).To(gomega.BeTrue())
			gomega.Expect(result.Failed).To(gomega.BeEmpty())
			gomega.Expect(result.Records).To(gomega.HaveLen(2))
			gomega.Expect(result.Stale).To(gomega.Equal(types.StaleReport{"c1": {"bar-2.0-1.x86_64"}}))
			gomega.Expect(result.Stale).ToNot(gomega.HaveKey("c2"))
		})

		ginkgo.It("should inspect every container even when some fail", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{
				"c1": {Packages: []string{"bar-2.0-1.x86_64"}},
				"c2": {ListExitCode: 1, Stderr: "boom"},
				"c3": {Packages: []string{"foo-1.0-1.x86_64"}},
			})

			result := actions.Audit(context.Background(), runtime, []string{"c1", "c2", "c3"}, baseline, auditParams)

			gomega.Expect(result.Succeeded).To(gomega.BeFalse())
			gomega.Expect(result.Failed).To(gomega.Equal([]string{"c2"}))
			gomega.Expect(result.Records).To(gomega.HaveLen(3))
			gomega.Expect(result.Records["c1"].Succeeded).To(gomega.BeTrue())
			gomega.Expect(result.Records["c3"].Succeeded).To(gomega.BeTrue())
			gomega.Expect(result.Stale).To(gomega.Equal(types.StaleReport{"c1": {"bar-2.0-1.x86_64"}}))
			gomega.Expect(runtime.Runs()).To(gomega.HaveLen(3))
		})

		ginkgo.It("should produce the same report when run twice", func() {
			runtime := mocks.NewRuntime(map[string]mocks.Image{
				"c1": {Packages: []string{"bar-2.0-1.x86_64", "foo-1.0-1.x86_64", "baz-3-1.noarch"}},
				"c2": {Packages: []string{"qux-1-1.noarch"}},
				"c3": {Packages: []string{"foo-1.0-1.x86_64"}},
			})
			images := []string{"c1", "c2", "c3"}

			first := actions.Audit(context.Background(), runtime, images, baseline, auditParams)
			second := actions.Audit(context.Background(), runtime, images, baseline, auditParams)

			gomega.Expect(second.Stale).To(gomega.Equal(first.Stale))
		})

		ginkgo.It("should never exceed the pool size", func() {
			images := map[string]mocks.Image{}
			names := []string{}

			for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
				images[name] = mocks.Image{Packages: []string{"foo-1.0-1.x86_64"}}
				names = append(names, name)
			}

			runtime := mocks.NewRuntime(images)
			runtime.Delay = 20 * time.Millisecond

			params := auditParams
			params.Workers = 3

			result := actions.Audit(context.Background(), runtime, names, baseline, params)

			gomega.Expect(result.Succeeded).To(gomega.BeTrue())
			gomega.Expect(runtime.Peak()).To(gomega.BeNumerically("<=", 3))
			gomega.Expect(runtime.Runs()).To(gomega.HaveLen(8))
		})

		ginkgo.It("should log only through the injected logger", func() {
			level := logrus.GetLevel()
			defer logrus.SetLevel(level)
			logrus.SetLevel(logrus.DebugLevel)

			global := test.NewGlobal()
			defer logrus.StandardLogger().ReplaceHooks(logrus.LevelHooks{})

			logger, hook := test.NewNullLogger()
			logger.SetLevel(logrus.DebugLevel)

			runtime := mocks.NewRuntime(map[string]mocks.Image{
				"c1": {Packages: []string{"bar-2.0-1.x86_64"}},
				"c2": {Packages: []string{"foo-1.0-1.x86_64"}},
			})

			params := auditParams
			params.Logger = logger

			actions.Audit(context.Background(), runtime, []string{"c1", "c2"}, baseline, params)

			gomega.Expect(global.AllEntries()).To(gomega.BeEmpty())
			gomega.Expect(hook.AllEntries()).ToNot(gomega.BeEmpty())

			first := hook.AllEntries()[0]
			gomega.Expect(first.Message).To(gomega.Equal("Starting package audit"))
			gomega.Expect(first.Data).To(gomega.HaveKeyWithValue("workers", 2))
		})

		ginkgo.It("should succeed on an empty inventory", func() {
			runtime := mocks.NewRuntime(nil)

			result := actions.Audit(context.Background(), runtime, nil, baseline, auditParams)

			gomega.Expect(result.Succeeded).To(gomega.BeTrue())
			gomega.Expect(result.Stale).To(gomega.BeEmpty())
			gomega.Expect(result.Records).To(gomega.BeEmpty())
		})
	})
})
